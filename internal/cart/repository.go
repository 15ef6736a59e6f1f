package cart

import "context"

// Repository persists cart state between process restarts. The engine is
// the source of truth while the process runs; the repository only loads
// on first access and saves after mutations.
type Repository interface {
	GetCart(ctx context.Context, userID string) (State, error)
	SaveCart(ctx context.Context, userID string, s State) error
	DeleteCart(ctx context.Context, userID string) error
}
