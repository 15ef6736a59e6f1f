package checkout

import (
	"context"

	"github.com/shopspring/decimal"
)

// Method tags how the user pays.
type Method string

const (
	MethodCard   Method = "card"
	MethodPayPal Method = "paypal"
	MethodApple  Method = "apple"
	MethodGoogle Method = "google"
)

func (m Method) Valid() bool {
	switch m {
	case MethodCard, MethodPayPal, MethodApple, MethodGoogle:
		return true
	}
	return false
}

// Details are the payment inputs the user submits. Card fields are only
// checked for presence, not format.
type Details struct {
	Method     Method
	CardNumber string
	Expiry     string
	CVV        string
	HolderName string
}

// ChargeResult is the gateway's answer. A declined charge is a normal
// result, not a transport error.
type ChargeResult struct {
	Approved      bool
	Reference     string
	DeclineReason string
}

// Gateway is the payment collaborator. Implementations may simulate or
// call a real processor; the flow only sees this interface.
type Gateway interface {
	Charge(ctx context.Context, amount decimal.Decimal, details Details) (*ChargeResult, error)
}
