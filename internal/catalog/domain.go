package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind distinguishes the two purchasable families the shop sells.
type Kind string

const (
	KindProduct Kind = "product" // brewed drinks, sized S/M/L
	KindBean    Kind = "bean"    // bean bags, fixed price
)

// Purchasable is the capability set the cart needs from a catalog entry.
// Products and beans both implement it; the cart never cares which.
type Purchasable interface {
	ID() string
	DisplayName() string
	ItemKind() Kind
	// UnitPrice returns the price for the given variant label. Labels the
	// entry does not know fall back to the base price.
	UnitPrice(variantKey string) decimal.Decimal
	ImageRef() string
}

// Product is a brewed drink. Size labels map to price multipliers.
type Product struct {
	EntryID     string
	Name        string
	Price       decimal.Decimal
	Description string
	Rating      float64
	Image       string
	SizePrices  map[string]decimal.Decimal // size label -> multiplier
}

func (p Product) ID() string          { return p.EntryID }
func (p Product) DisplayName() string { return p.Name }
func (p Product) ItemKind() Kind      { return KindProduct }
func (p Product) ImageRef() string    { return p.Image }

func (p Product) UnitPrice(variantKey string) decimal.Decimal {
	if m, ok := p.SizePrices[variantKey]; ok {
		return p.Price.Mul(m)
	}
	return p.Price
}

// Bean is a bag of roasted beans. Variants do not change the price.
type Bean struct {
	EntryID     string
	Name        string
	Price       decimal.Decimal
	Description string
	Rating      float64
	Image       string
}

func (b Bean) ID() string                       { return b.EntryID }
func (b Bean) DisplayName() string              { return b.Name }
func (b Bean) ItemKind() Kind                   { return KindBean }
func (b Bean) ImageRef() string                 { return b.Image }
func (b Bean) UnitPrice(string) decimal.Decimal { return b.Price }

// Record is the storage and wire shape of a catalog entry. It round-trips
// through JSON (HTTP fetch, redis cache) and the sqlite store.
type Record struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"name"`
	Kind        Kind                       `json:"kind"`
	Price       decimal.Decimal            `json:"price"`
	Description string                     `json:"description,omitempty"`
	Rating      float64                    `json:"rating,omitempty"`
	Image       string                     `json:"image,omitempty"`
	SizePrices  map[string]decimal.Decimal `json:"size_prices,omitempty"`
}

// Item converts the record to its purchasable variant.
func (r Record) Item() Purchasable {
	if r.Kind == KindBean {
		return Bean{
			EntryID:     r.ID,
			Name:        r.Name,
			Price:       r.Price,
			Description: r.Description,
			Rating:      r.Rating,
			Image:       r.Image,
		}
	}
	return Product{
		EntryID:     r.ID,
		Name:        r.Name,
		Price:       r.Price,
		Description: r.Description,
		Rating:      r.Rating,
		Image:       r.Image,
		SizePrices:  r.SizePrices,
	}
}

// Snapshot is one fetch cycle of the catalog. Immutable once fetched;
// entry IDs are unique within a snapshot.
type Snapshot struct {
	Entries   []Record  `json:"entries"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Find returns the purchasable entry with the given ID.
func (s *Snapshot) Find(id string) (Purchasable, bool) {
	for _, r := range s.Entries {
		if r.ID == id {
			return r.Item(), true
		}
	}
	return nil, false
}
