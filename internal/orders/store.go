package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrOrderNotFound = errors.New("order not found")

	// ErrInvalidTransition means the requested status change is illegal;
	// the order is left unchanged.
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// Store is the order history: an append-only log queryable most-recent-first.
type Store interface {
	// AddOrder records a new order at the head of the history.
	AddOrder(ctx context.Context, order *Order) error

	// GetOrders returns all orders, most recent first. Reading never
	// modifies the sequence.
	GetOrders(ctx context.Context) ([]*Order, error)

	GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// UpdateStatus applies a status transition, rejecting illegal ones
	// with ErrInvalidTransition.
	UpdateStatus(ctx context.Context, id uuid.UUID, to Status) error

	// ClearOrders empties the history. Administrative use only.
	ClearOrders(ctx context.Context) error
}
