package service

import (
	"context"
	"errors"
	"log"

	"golang.org/x/sync/singleflight"

	"github.com/mkravets/brewcart/internal/catalog"
	"github.com/mkravets/brewcart/internal/catalog/cache"
)

// Service is the cache-aside catalog reader: snapshot from cache when
// warm, one fetch shared across concurrent misses otherwise.
type Service struct {
	fetcher catalog.Fetcher
	cache   cache.CatalogCache
	sfg     singleflight.Group // Prevents fetch stampede on a cold cache
}

// NewService wires a catalog service. cache may be nil, which disables
// caching entirely.
func NewService(fetcher catalog.Fetcher, c cache.CatalogCache) *Service {
	return &Service{
		fetcher: fetcher,
		cache:   c,
	}
}

func (s *Service) Snapshot(ctx context.Context) (*catalog.Snapshot, error) {
	v, err, _ := s.sfg.Do("catalog", func() (interface{}, error) {
		if s.cache != nil {
			snap, cacheErr := s.cache.Get(ctx)
			if cacheErr == nil {
				return snap, nil
			}
			if !errors.Is(cacheErr, cache.ErrCacheMiss) {
				log.Printf("catalog cache get error: %v", cacheErr) // log cache error but continue
			}
		}

		snap, fetchErr := s.fetcher.Fetch(ctx)
		if fetchErr != nil {
			return nil, fetchErr
		}

		if s.cache != nil {
			go func() {
				if setErr := s.cache.Set(context.Background(), snap); setErr != nil {
					log.Printf("catalog cache set error: %v", setErr)
				}
			}()
		}

		return snap, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*catalog.Snapshot), nil
}

// Invalidate drops the cached snapshot. Called after admin catalog
// mutations so readers see the change on the next fetch.
func (s *Service) Invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Printf("catalog cache invalidate error: %v", err)
	}
}
