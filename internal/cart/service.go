package cart

import (
	"context"
	"errors"
	"log"
	"sync"
)

// Service hands out one engine per user and keeps the repository in sync
// after mutations. A nil repository means carts live only in memory.
type Service struct {
	repo Repository

	mu      sync.Mutex
	engines map[string]*Engine
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:    repo,
		engines: make(map[string]*Engine),
	}
}

// Engine returns the user's cart engine, loading persisted state on first
// access. A missing stored cart is not an error; the user starts empty.
func (s *Service) Engine(ctx context.Context, userID string) (*Engine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.engines[userID]; ok {
		return e, nil
	}

	e := NewEngine()
	if s.repo != nil {
		state, err := s.repo.GetCart(ctx, userID)
		if err != nil && !errors.Is(err, ErrCartNotFound) {
			return nil, err
		}
		if err == nil {
			e.Restore(state)
		}
	}

	s.engines[userID] = e
	return e, nil
}

// Persist writes the user's current cart state through to the repository.
// Persistence failures are logged, not surfaced: the in-memory cart is
// the source of truth while the process runs.
func (s *Service) Persist(ctx context.Context, userID string) {
	if s.repo == nil {
		return
	}

	s.mu.Lock()
	e, ok := s.engines[userID]
	s.mu.Unlock()
	if !ok {
		return
	}

	state := e.State()
	if len(state.Items) == 0 {
		if err := s.repo.DeleteCart(ctx, userID); err != nil {
			log.Printf("cart delete error for user %s: %v", userID, err)
		}
		return
	}

	if err := s.repo.SaveCart(ctx, userID, state); err != nil {
		log.Printf("cart save error for user %s: %v", userID, err)
	}
}
