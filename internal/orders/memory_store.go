package orders

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore implements Store with in-memory storage. Orders are kept
// most-recent-first; reads hand out copies so callers cannot mutate
// recorded history.
type MemoryStore struct {
	mu     sync.RWMutex
	orders []*Order
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) AddOrder(_ context.Context, order *Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = append([]*Order{order.Clone()}, s.orders...)
	return nil
}

func (s *MemoryStore) GetOrders(_ context.Context) ([]*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	return out, nil
}

func (s *MemoryStore) GetOrderByID(_ context.Context, id uuid.UUID) (*Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, o := range s.orders {
		if o.ID == id {
			return o.Clone(), nil
		}
	}
	return nil, ErrOrderNotFound
}

func (s *MemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, to Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.ID == id {
			if !CanTransitionTo(o.Status, to) {
				return ErrInvalidTransition
			}
			o.Status = to
			return nil
		}
	}
	return ErrOrderNotFound
}

func (s *MemoryStore) ClearOrders(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = nil
	return nil
}
