package cart

import "github.com/shopspring/decimal"

// Command is a cart mutation. Apply processes commands with a pure
// transition function, so every mutation path recomputes the derived
// totals and state can be tested without an engine instance.
type Command interface {
	apply(State) (State, error)
}

// AddItem creates the slot with quantity 1, or increments an existing
// slot's quantity. Price and display fields are only captured on the
// first add of a slot.
type AddItem struct {
	EntryID    string
	VariantKey string
	Name       string
	Image      string
	UnitPrice  decimal.Decimal
}

// RemoveItem deletes the slot. Removing an absent slot is a no-op.
type RemoveItem struct {
	EntryID    string
	VariantKey string
}

// UpdateQuantity sets the slot's quantity to an absolute value. A value
// of zero or less removes the slot.
type UpdateQuantity struct {
	EntryID    string
	VariantKey string
	Quantity   int
}

// Clear empties the cart.
type Clear struct{}

// Apply returns the state after the command. The input state is never
// mutated; on error it is returned unchanged.
func Apply(s State, cmd Command) (State, error) {
	return cmd.apply(s)
}

func (c AddItem) apply(s State) (State, error) {
	if c.EntryID == "" || c.Name == "" || c.UnitPrice.IsNegative() {
		return s, ErrInvalidInput
	}

	items := make([]LineItem, len(s.Items))
	copy(items, s.Items)

	key := SlotKey{EntryID: c.EntryID, VariantKey: c.VariantKey}
	if i := s.find(key); i >= 0 {
		items[i].Quantity++
		return recompute(items), nil
	}

	items = append(items, LineItem{
		EntryID:    c.EntryID,
		VariantKey: c.VariantKey,
		Name:       c.Name,
		Image:      c.Image,
		UnitPrice:  c.UnitPrice,
		Quantity:   1,
	})
	return recompute(items), nil
}

func (c RemoveItem) apply(s State) (State, error) {
	key := SlotKey{EntryID: c.EntryID, VariantKey: c.VariantKey}
	i := s.find(key)
	if i < 0 {
		return s, nil
	}

	items := make([]LineItem, 0, len(s.Items)-1)
	items = append(items, s.Items[:i]...)
	items = append(items, s.Items[i+1:]...)
	return recompute(items), nil
}

func (c UpdateQuantity) apply(s State) (State, error) {
	if c.Quantity <= 0 {
		// Same as removing the slot; quantities of zero are never stored.
		return RemoveItem{EntryID: c.EntryID, VariantKey: c.VariantKey}.apply(s)
	}

	key := SlotKey{EntryID: c.EntryID, VariantKey: c.VariantKey}
	i := s.find(key)
	if i < 0 {
		return s, ErrSlotNotFound
	}

	items := make([]LineItem, len(s.Items))
	copy(items, s.Items)
	items[i].Quantity = c.Quantity
	return recompute(items), nil
}

func (c Clear) apply(State) (State, error) {
	return emptyState(), nil
}
