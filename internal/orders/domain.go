package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
)

// IsTerminal reports whether no further status transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}

// CanTransitionTo reports whether from -> to is a legal status change.
// Only pending orders move; completed and cancelled are terminal.
func CanTransitionTo(from, to Status) bool {
	if from != StatusPending {
		return false
	}
	return to == StatusCompleted || to == StatusCancelled
}

// OrderItem is a line of an order, copied from the checkout snapshot.
type OrderItem struct {
	EntryID    string          `json:"entry_id"`
	VariantKey string          `json:"variant_key,omitempty"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// Order is created by the checkout flow and never changes afterwards,
// except for the status transitions CanTransitionTo allows. Items are a
// deep copy of the cart snapshot; later cart or catalog changes cannot
// alter a recorded order.
type Order struct {
	ID            uuid.UUID       `json:"id"`
	CreatedAt     time.Time       `json:"created_at"`
	Status        Status          `json:"status"`
	Items         []OrderItem     `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	ShippingFee   decimal.Decimal `json:"shipping_fee"`
	Tax           decimal.Decimal `json:"tax"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
}

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	out := *o
	if len(o.Items) > 0 {
		out.Items = make([]OrderItem, len(o.Items))
		copy(out.Items, o.Items)
	}
	return &out
}
