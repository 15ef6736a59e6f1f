package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnavailable means the catalog source could not be reached. Callers
// retry or show an empty state; they never crash on it.
var ErrUnavailable = errors.New("catalog source unavailable")

// Fetcher supplies one catalog snapshot per call.
type Fetcher interface {
	Fetch(ctx context.Context) (*Snapshot, error)
}

// HTTPFetcher pulls the catalog from the products API.
type HTTPFetcher struct {
	baseURL string
	client  *http.Client
}

func NewHTTPFetcher(baseURL string) *HTTPFetcher {
	return &HTTPFetcher{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context) (*Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.baseURL+"/products", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: products API returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var entries []Record
	if decodeErr := json.NewDecoder(resp.Body).Decode(&entries); decodeErr != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", decodeErr)
	}

	return &Snapshot{Entries: entries, FetchedAt: time.Now()}, nil
}

// StaticFetcher serves a fixed entry list. Used for local runs and as
// seed data for an empty store.
type StaticFetcher struct {
	entries []Record
}

func NewStaticFetcher(entries []Record) *StaticFetcher {
	return &StaticFetcher{entries: entries}
}

func (f *StaticFetcher) Fetch(context.Context) (*Snapshot, error) {
	entries := make([]Record, len(f.entries))
	copy(entries, f.entries)
	return &Snapshot{Entries: entries, FetchedAt: time.Now()}, nil
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// DefaultEntries is the coffee-shop starter catalog.
func DefaultEntries() []Record {
	sizes := map[string]decimal.Decimal{"S": d("0.9"), "M": d("1"), "L": d("1.2")}
	return []Record{
		{ID: "p1", Name: "Cappuccino", Kind: KindProduct, Price: d("4.20"),
			Description: "Espresso with steamed milk foam", Rating: 4.7,
			Image: "cappuccino.png", SizePrices: sizes},
		{ID: "p2", Name: "Latte", Kind: KindProduct, Price: d("4.20"),
			Description: "Espresso with silky steamed milk", Rating: 4.5,
			Image: "latte.png", SizePrices: sizes},
		{ID: "p3", Name: "Espresso", Kind: KindProduct, Price: d("4.50"),
			Description: "Double shot, dark roast", Rating: 4.8,
			Image: "espresso.png", SizePrices: sizes},
		{ID: "b1", Name: "Arabica Beans", Kind: KindBean, Price: d("5.20"),
			Description: "250g single-origin bag", Rating: 4.6,
			Image: "arabica.png"},
		{ID: "b2", Name: "Robusta Beans", Kind: KindBean, Price: d("4.80"),
			Description: "250g strong blend bag", Rating: 4.2,
			Image: "robusta.png"},
	}
}
