package cart

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mkravets/brewcart/internal/catalog"
)

// Engine owns one cart's live state. All mutation goes through the
// command transition function, so the derived totals can never drift.
type Engine struct {
	mu    sync.RWMutex
	state State
}

func NewEngine() *Engine {
	return &Engine{state: emptyState()}
}

// AddItem puts one unit of the entry into the (entry, variantKey) slot.
// If the slot exists its quantity grows by one; otherwise a new slot is
// created capturing the current price and display fields. Pass a non-nil
// priceOverride to capture a price other than the catalog one.
func (e *Engine) AddItem(entry catalog.Purchasable, variantKey string, priceOverride *decimal.Decimal) error {
	if entry == nil {
		return ErrInvalidInput
	}

	price := entry.UnitPrice(variantKey)
	if priceOverride != nil {
		price = *priceOverride
	}

	return e.dispatch(AddItem{
		EntryID:    entry.ID(),
		VariantKey: variantKey,
		Name:       entry.DisplayName(),
		Image:      entry.ImageRef(),
		UnitPrice:  price,
	})
}

// RemoveItem deletes the slot. Absent slots are silently ignored.
func (e *Engine) RemoveItem(entryID, variantKey string) {
	_ = e.dispatch(RemoveItem{EntryID: entryID, VariantKey: variantKey})
}

// UpdateQuantity sets the slot's quantity to an absolute value. Zero or
// less removes the slot. Returns ErrSlotNotFound when a positive quantity
// targets a slot that does not exist.
func (e *Engine) UpdateQuantity(entryID, variantKey string, quantity int) error {
	return e.dispatch(UpdateQuantity{EntryID: entryID, VariantKey: variantKey, Quantity: quantity})
}

// Clear empties the cart. Idempotent.
func (e *Engine) Clear() {
	_ = e.dispatch(Clear{})
}

// State returns a read-only snapshot. Mutating it does not affect the
// cart; all mutation goes through the methods above.
func (e *Engine) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Restore replaces the live state, recomputing the derived fields from
// the item set. Used when loading a persisted cart.
func (e *Engine) Restore(s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = recompute(s.Clone().Items)
}

func (e *Engine) dispatch(cmd Command) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := Apply(e.state, cmd)
	if err != nil {
		return err
	}
	e.state = next
	return nil
}
