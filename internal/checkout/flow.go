package checkout

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mkravets/brewcart/internal/cart"
	"github.com/mkravets/brewcart/internal/orders"
)

// EventSink receives completed orders after they are recorded. Publish
// failures are logged; checkout success never depends on them.
type EventSink interface {
	OrderCompleted(ctx context.Context, order *orders.Order) error
}

// Flow drives one checkout attempt over a cart. Begin freezes a snapshot
// of the cart; Submit charges the gateway and, on success, records the
// order and clears the cart. The live cart stays mutable the whole time —
// items added mid-flight never leak into the frozen snapshot.
type Flow struct {
	engine  *cart.Engine
	store   orders.Store
	gateway Gateway
	pricing Pricing
	events  EventSink

	payTimeout time.Duration

	mu       sync.Mutex
	status   Status
	snapshot cart.State
}

// NewFlow wires a checkout flow. events may be nil.
func NewFlow(engine *cart.Engine, store orders.Store, gateway Gateway, pricing Pricing, events EventSink) *Flow {
	return &Flow{
		engine:     engine,
		store:      store,
		gateway:    gateway,
		pricing:    pricing,
		events:     events,
		payTimeout: 10 * time.Second,
		status:     StatusIdle,
	}
}

// SetPaymentTimeout bounds the gateway call during Processing.
func (f *Flow) SetPaymentTimeout(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payTimeout = d
}

func (f *Flow) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Review is the charge breakdown shown to the user before submitting.
type Review struct {
	Items       []cart.LineItem
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	Tax         decimal.Decimal
	Charge      decimal.Decimal
}

// Begin enters Reviewing with a frozen copy of the current cart state.
// Calling it again while still Reviewing refreshes the snapshot. An empty
// cart is rejected with ErrEmptyCart and no transition happens.
func (f *Flow) Begin() (*Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status != StatusReviewing && !CanTransitionTo(f.status, StatusReviewing) {
		return nil, fmt.Errorf("%w: cannot begin checkout from %s", ErrIllegalTransition, f.status)
	}

	snap := f.engine.State()
	if snap.ItemCount == 0 {
		return nil, ErrEmptyCart
	}

	f.snapshot = snap
	f.status = StatusReviewing
	return f.reviewLocked(), nil
}

// Abandon leaves checkout before any payment was issued. Nothing needs
// reversal; the cart is untouched. A no-op when already Idle.
func (f *Flow) Abandon() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.status == StatusIdle {
		return nil
	}
	if !CanTransitionTo(f.status, StatusIdle) {
		return fmt.Errorf("%w: cannot abandon checkout from %s", ErrIllegalTransition, f.status)
	}
	f.status = StatusIdle
	f.snapshot = cart.State{}
	return nil
}

// Submit charges the frozen snapshot's total. On approval it records the
// order, clears the cart (strictly after the order is recorded) and ends
// in Succeeded. On decline or gateway failure the flow returns to
// Reviewing with cart and history untouched.
func (f *Flow) Submit(ctx context.Context, details Details) (*orders.Order, error) {
	f.mu.Lock()
	if f.status != StatusReviewing {
		f.mu.Unlock()
		return nil, fmt.Errorf("%w: cannot submit payment from %s", ErrIllegalTransition, f.status)
	}
	if err := validateDetails(details); err != nil {
		f.mu.Unlock()
		return nil, err
	}
	f.status = StatusProcessing
	snap := f.snapshot
	f.mu.Unlock()

	subtotal := snap.Total
	charge := f.pricing.Charge(subtotal)

	// The one suspend point of the flow. The live cart stays usable
	// while this is in flight; only the frozen snapshot is charged.
	payCtx, cancel := context.WithTimeout(ctx, f.payTimeout)
	defer cancel()
	result, err := f.gateway.Charge(payCtx, charge, details)
	if err != nil {
		f.backToReviewing()
		return nil, fmt.Errorf("payment gateway call failed: %w", err)
	}
	if !result.Approved {
		f.backToReviewing()
		return nil, fmt.Errorf("%w: %s", ErrPaymentDeclined, result.DeclineReason)
	}

	order := &orders.Order{
		ID:            uuid.New(),
		CreatedAt:     time.Now(),
		Status:        orders.StatusCompleted,
		Items:         orderItems(snap.Items),
		Subtotal:      subtotal,
		ShippingFee:   f.pricing.ShippingFee,
		Tax:           f.pricing.Tax(subtotal),
		Total:         charge,
		PaymentMethod: string(details.Method),
		PaymentRef:    result.Reference,
	}

	if storeErr := f.store.AddOrder(ctx, order); storeErr != nil {
		// Never clear the cart without a recorded order. The charge went
		// through, so this needs operator attention.
		f.backToReviewing()
		log.Printf("order %s not recorded after captured payment %s: %v", order.ID, result.Reference, storeErr)
		return nil, fmt.Errorf("failed to record order: %w", storeErr)
	}

	// Clearing is last and gated on the order being recorded.
	f.engine.Clear()

	f.mu.Lock()
	f.status = StatusSucceeded
	f.snapshot = cart.State{}
	f.mu.Unlock()

	if f.events != nil {
		if evErr := f.events.OrderCompleted(ctx, order); evErr != nil {
			log.Printf("order event publish failed for %s: %v", order.ID, evErr)
		}
	}

	return order, nil
}

// backToReviewing re-opens the attempt for retry after a failed payment.
// Failed is observable only as the returned error; the flow immediately
// sits in Reviewing again so the user can resubmit.
func (f *Flow) backToReviewing() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = StatusReviewing
}

func (f *Flow) reviewLocked() *Review {
	subtotal := f.snapshot.Total
	items := make([]cart.LineItem, len(f.snapshot.Items))
	copy(items, f.snapshot.Items)
	return &Review{
		Items:       items,
		Subtotal:    subtotal,
		ShippingFee: f.pricing.ShippingFee,
		Tax:         f.pricing.Tax(subtotal),
		Charge:      f.pricing.Charge(subtotal),
	}
}

func validateDetails(d Details) error {
	if !d.Method.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidPayment, d.Method)
	}
	if d.Method == MethodCard {
		// Presence-only check, matching the storefront's behavior.
		if d.CardNumber == "" || d.Expiry == "" || d.CVV == "" || d.HolderName == "" {
			return fmt.Errorf("%w: all card fields are required", ErrInvalidPayment)
		}
	}
	return nil
}

func orderItems(items []cart.LineItem) []orders.OrderItem {
	out := make([]orders.OrderItem, 0, len(items))
	for _, li := range items {
		out = append(out, orders.OrderItem{
			EntryID:    li.EntryID,
			VariantKey: li.VariantKey,
			Name:       li.Name,
			Quantity:   li.Quantity,
			UnitPrice:  li.UnitPrice,
			Subtotal:   li.Subtotal(),
		})
	}
	return out
}
