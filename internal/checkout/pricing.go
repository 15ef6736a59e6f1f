package checkout

import "github.com/shopspring/decimal"

// Pricing holds the charge policy: a flat shipping fee plus a tax rate
// applied to the subtotal. Injected configuration, never baked into the
// flow logic.
type Pricing struct {
	ShippingFee decimal.Decimal
	TaxRate     decimal.Decimal
}

func DefaultPricing() Pricing {
	return Pricing{
		ShippingFee: decimal.RequireFromString("2.99"),
		TaxRate:     decimal.RequireFromString("0.10"),
	}
}

// Tax is subtotal times the tax rate, exact.
func (p Pricing) Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(p.TaxRate)
}

// Charge is subtotal + shipping + tax. No intermediate rounding; callers
// round to two places at display boundaries only.
func (p Pricing) Charge(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Add(p.ShippingFee).Add(p.Tax(subtotal))
}
