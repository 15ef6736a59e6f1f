package cart

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func addCmd(id, variant, priceStr string) AddItem {
	return AddItem{
		EntryID:    id,
		VariantKey: variant,
		Name:       "item " + id,
		UnitPrice:  price(priceStr),
	}
}

func TestApply_AddItem_NewSlot(t *testing.T) {
	s, err := Apply(emptyState(), addCmd("p1", "M", "4.20"))
	require.NoError(t, err)

	require.Len(t, s.Items, 1)
	assert.Equal(t, 1, s.Items[0].Quantity)
	assert.Equal(t, 1, s.ItemCount)
	assert.True(t, s.Total.Equal(price("4.20")))
}

func TestApply_AddItem_SameSlotTwice_IncrementsQuantity(t *testing.T) {
	s, err := Apply(emptyState(), addCmd("p1", "M", "4.20"))
	require.NoError(t, err)
	s, err = Apply(s, addCmd("p1", "M", "4.20"))
	require.NoError(t, err)

	require.Len(t, s.Items, 1, "same slot must not produce a second line item")
	assert.Equal(t, 2, s.Items[0].Quantity)
	assert.Equal(t, 2, s.ItemCount)
	assert.True(t, s.Total.Equal(price("8.40")))
}

func TestApply_AddItem_DifferentVariant_NewSlot(t *testing.T) {
	s, err := Apply(emptyState(), addCmd("p1", "M", "4.20"))
	require.NoError(t, err)
	s, err = Apply(s, addCmd("p1", "L", "5.04"))
	require.NoError(t, err)

	require.Len(t, s.Items, 2, "variant key must differentiate slots")
	assert.Equal(t, 2, s.ItemCount)
	assert.True(t, s.Total.Equal(price("9.24")))
}

func TestApply_AddItem_KeepsFirstCapturedPrice(t *testing.T) {
	s, err := Apply(emptyState(), addCmd("p1", "M", "4.20"))
	require.NoError(t, err)

	// Price changed in the catalog between adds; the slot keeps the
	// price captured on first add.
	s, err = Apply(s, addCmd("p1", "M", "9.99"))
	require.NoError(t, err)

	require.Len(t, s.Items, 1)
	assert.True(t, s.Items[0].UnitPrice.Equal(price("4.20")))
	assert.True(t, s.Total.Equal(price("8.40")))
}

func TestApply_AddItem_Invalid(t *testing.T) {
	tests := []struct {
		name string
		cmd  AddItem
	}{
		{"missing id", AddItem{Name: "x", UnitPrice: price("1.00")}},
		{"missing name", AddItem{EntryID: "p1", UnitPrice: price("1.00")}},
		{"negative price", AddItem{EntryID: "p1", Name: "x", UnitPrice: price("-0.01")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := Apply(emptyState(), addCmd("p9", "M", "2.00"))
			require.NoError(t, err)

			after, err := Apply(before, tt.cmd)
			assert.ErrorIs(t, err, ErrInvalidInput)
			assert.Equal(t, before, after, "rejected input must not change state")
		})
	}
}

func TestApply_RemoveItem_AbsentSlot_NoOp(t *testing.T) {
	s, err := Apply(emptyState(), addCmd("p1", "M", "4.20"))
	require.NoError(t, err)

	s2, err := Apply(s, RemoveItem{EntryID: "p2", VariantKey: "M"})
	require.NoError(t, err)
	assert.Equal(t, s, s2)
}

func TestApply_UpdateQuantity_Zero_RemovesSlot(t *testing.T) {
	s, err := Apply(emptyState(), addCmd("p1", "M", "4.20"))
	require.NoError(t, err)

	s, err = Apply(s, UpdateQuantity{EntryID: "p1", VariantKey: "M", Quantity: 0})
	require.NoError(t, err)
	assert.Empty(t, s.Items)
	assert.Equal(t, 0, s.ItemCount)
	assert.True(t, s.Total.IsZero())

	// Removing the now-absent slot again is a no-op, not an error.
	s, err = Apply(s, RemoveItem{EntryID: "p1", VariantKey: "M"})
	require.NoError(t, err)
	assert.Empty(t, s.Items)
}

func TestApply_UpdateQuantity_Absolute(t *testing.T) {
	s, err := Apply(emptyState(), addCmd("p1", "M", "4.20"))
	require.NoError(t, err)

	s, err = Apply(s, UpdateQuantity{EntryID: "p1", VariantKey: "M", Quantity: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, s.Items[0].Quantity)
	assert.True(t, s.Total.Equal(price("21.00")))
}

func TestApply_UpdateQuantity_AbsentSlot(t *testing.T) {
	s, err := Apply(emptyState(), UpdateQuantity{EntryID: "p1", VariantKey: "M", Quantity: 3})
	assert.ErrorIs(t, err, ErrSlotNotFound)
	assert.Empty(t, s.Items)
}

func TestApply_Clear(t *testing.T) {
	s, err := Apply(emptyState(), addCmd("p1", "M", "4.20"))
	require.NoError(t, err)

	s, err = Apply(s, Clear{})
	require.NoError(t, err)
	assert.Empty(t, s.Items)
	assert.Equal(t, 0, s.ItemCount)
	assert.True(t, s.Total.IsZero())

	// Idempotent.
	s, err = Apply(s, Clear{})
	require.NoError(t, err)
	assert.Empty(t, s.Items)
}

// TestApply_RandomSequences_InvariantsHold drives random command sequences
// and checks after every step that the derived fields match the item set
// and no slot ever stores a non-positive quantity.
func TestApply_RandomSequences_InvariantsHold(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	ids := []string{"p1", "p2", "p3", "b1"}
	variants := []string{"S", "M", "L", ""}

	s := emptyState()
	for step := 0; step < 2000; step++ {
		id := ids[rng.Intn(len(ids))]
		variant := variants[rng.Intn(len(variants))]

		var cmd Command
		switch rng.Intn(10) {
		case 0:
			cmd = Clear{}
		case 1, 2:
			cmd = RemoveItem{EntryID: id, VariantKey: variant}
		case 3, 4, 5:
			cmd = UpdateQuantity{EntryID: id, VariantKey: variant, Quantity: rng.Intn(6) - 1}
		default:
			cmd = AddItem{
				EntryID:    id,
				VariantKey: variant,
				Name:       "item " + id,
				UnitPrice:  decimal.NewFromInt(int64(rng.Intn(900) + 100)).Div(decimal.NewFromInt(100)),
			}
		}

		next, err := Apply(s, cmd)
		if err != nil {
			require.ErrorIs(t, err, ErrSlotNotFound, "step %d: only absent-slot updates may fail", step)
			assert.Equal(t, s, next, "step %d: failed command must not change state", step)
			continue
		}
		s = next

		wantTotal := decimal.Zero
		wantCount := 0
		seen := make(map[SlotKey]bool, len(s.Items))
		for _, item := range s.Items {
			require.Positive(t, item.Quantity, "step %d: stored quantity must be >= 1", step)
			require.False(t, seen[item.Key()], "step %d: duplicate slot %v", step, item.Key())
			seen[item.Key()] = true
			wantTotal = wantTotal.Add(item.Subtotal())
			wantCount += item.Quantity
		}
		require.True(t, s.Total.Equal(wantTotal),
			fmt.Sprintf("step %d: total %s drifted from items sum %s", step, s.Total, wantTotal))
		require.Equal(t, wantCount, s.ItemCount, "step %d: item count drifted", step)
	}
}
