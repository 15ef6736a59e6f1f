package httpapi

import (
	"time"

	"github.com/mkravets/brewcart/internal/cart"
	"github.com/mkravets/brewcart/internal/checkout"
	"github.com/mkravets/brewcart/internal/orders"
)

// Money crosses the wire as a fixed two-decimal string. Rounding happens
// here and only here; everything behind the handlers stays exact.

type CartItemDTO struct {
	EntryID    string `json:"entry_id"`
	VariantKey string `json:"variant_key,omitempty"`
	Name       string `json:"name"`
	Image      string `json:"image,omitempty"`
	UnitPrice  string `json:"unit_price"`
	Quantity   int    `json:"quantity"`
	Subtotal   string `json:"subtotal"`
}

type CartDTO struct {
	Items     []CartItemDTO `json:"items"`
	Total     string        `json:"total"`
	ItemCount int           `json:"item_count"`
}

type ReviewDTO struct {
	Items       []CartItemDTO `json:"items"`
	Subtotal    string        `json:"subtotal"`
	ShippingFee string        `json:"shipping_fee"`
	Tax         string        `json:"tax"`
	Total       string        `json:"total"`
}

type OrderItemDTO struct {
	EntryID    string `json:"entry_id"`
	VariantKey string `json:"variant_key,omitempty"`
	Name       string `json:"name"`
	Quantity   int    `json:"quantity"`
	UnitPrice  string `json:"unit_price"`
	Subtotal   string `json:"subtotal"`
}

type OrderDTO struct {
	ID            string         `json:"id"`
	CreatedAt     time.Time      `json:"created_at"`
	Status        string         `json:"status"`
	Items         []OrderItemDTO `json:"items"`
	Subtotal      string         `json:"subtotal"`
	ShippingFee   string         `json:"shipping_fee"`
	Tax           string         `json:"tax"`
	Total         string         `json:"total"`
	PaymentMethod string         `json:"payment_method"`
	PaymentRef    string         `json:"payment_ref,omitempty"`
}

func toCartItemDTO(li cart.LineItem) CartItemDTO {
	return CartItemDTO{
		EntryID:    li.EntryID,
		VariantKey: li.VariantKey,
		Name:       li.Name,
		Image:      li.Image,
		UnitPrice:  li.UnitPrice.StringFixed(2),
		Quantity:   li.Quantity,
		Subtotal:   li.Subtotal().StringFixed(2),
	}
}

func toCartDTO(state cart.State) CartDTO {
	items := make([]CartItemDTO, 0, len(state.Items))
	for _, li := range state.Items {
		items = append(items, toCartItemDTO(li))
	}
	return CartDTO{
		Items:     items,
		Total:     state.Total.StringFixed(2),
		ItemCount: state.ItemCount,
	}
}

func toReviewDTO(rv *checkout.Review) ReviewDTO {
	items := make([]CartItemDTO, 0, len(rv.Items))
	for _, li := range rv.Items {
		items = append(items, toCartItemDTO(li))
	}
	return ReviewDTO{
		Items:       items,
		Subtotal:    rv.Subtotal.StringFixed(2),
		ShippingFee: rv.ShippingFee.StringFixed(2),
		Tax:         rv.Tax.StringFixed(2),
		Total:       rv.Charge.StringFixed(2),
	}
}

func toOrderDTO(o *orders.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, OrderItemDTO{
			EntryID:    it.EntryID,
			VariantKey: it.VariantKey,
			Name:       it.Name,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice.StringFixed(2),
			Subtotal:   it.Subtotal.StringFixed(2),
		})
	}
	return OrderDTO{
		ID:            o.ID.String(),
		CreatedAt:     o.CreatedAt,
		Status:        string(o.Status),
		Items:         items,
		Subtotal:      o.Subtotal.StringFixed(2),
		ShippingFee:   o.ShippingFee.StringFixed(2),
		Tax:           o.Tax.StringFixed(2),
		Total:         o.Total.StringFixed(2),
		PaymentMethod: o.PaymentMethod,
		PaymentRef:    o.PaymentRef,
	}
}

func toOrderDTOs(list []*orders.Order) []OrderDTO {
	out := make([]OrderDTO, 0, len(list))
	for _, o := range list {
		out = append(out, toOrderDTO(o))
	}
	return out
}
