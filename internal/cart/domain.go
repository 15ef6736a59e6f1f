package cart

import (
	"github.com/shopspring/decimal"
)

// SlotKey identifies a line item in the cart. The same catalog entry added
// with a different variant (size, bean bag, ...) occupies a different slot.
type SlotKey struct {
	EntryID    string
	VariantKey string
}

// LineItem is a single slot: quantity plus the price and display fields
// captured at the moment the slot was first added. Later catalog changes do
// not affect it.
type LineItem struct {
	EntryID    string          `json:"entry_id"`
	VariantKey string          `json:"variant_key"`
	Name       string          `json:"name"`
	Image      string          `json:"image,omitempty"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Quantity   int             `json:"quantity"`
}

func (li LineItem) Key() SlotKey {
	return SlotKey{EntryID: li.EntryID, VariantKey: li.VariantKey}
}

// Subtotal is unit price times quantity, exact (no rounding).
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// State is the full cart state. Items keep insertion order. Total and
// ItemCount are derived from Items and recomputed on every mutation; they
// never drift from the item set.
type State struct {
	Items     []LineItem      `json:"items"`
	Total     decimal.Decimal `json:"total"`
	ItemCount int             `json:"item_count"`
}

func emptyState() State {
	return State{Items: nil, Total: decimal.Zero, ItemCount: 0}
}

// Clone returns a deep copy. Mutating the copy cannot affect the original.
func (s State) Clone() State {
	out := State{Total: s.Total, ItemCount: s.ItemCount}
	if len(s.Items) > 0 {
		out.Items = make([]LineItem, len(s.Items))
		copy(out.Items, s.Items)
	}
	return out
}

func (s State) find(key SlotKey) int {
	for i, item := range s.Items {
		if item.Key() == key {
			return i
		}
	}
	return -1
}

// recompute derives Total and ItemCount from the item set.
func recompute(items []LineItem) State {
	total := decimal.Zero
	count := 0
	for _, item := range items {
		total = total.Add(item.Subtotal())
		count += item.Quantity
	}
	return State{Items: items, Total: total, ItemCount: count}
}
