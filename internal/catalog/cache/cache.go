package cache

import (
	"context"
	"errors"

	"github.com/mkravets/brewcart/internal/catalog"
)

type CatalogCache interface {
	Get(ctx context.Context) (*catalog.Snapshot, error)
	Set(ctx context.Context, snap *catalog.Snapshot) error
	Invalidate(ctx context.Context) error
}

var ErrCacheMiss = errors.New("cache miss")
