package checkout

import "errors"

var (
	// ErrEmptyCart blocks checkout with nothing to buy; no transition
	// happens and the payment gateway is never called.
	ErrEmptyCart = errors.New("cart is empty, nothing to check out")

	// ErrIllegalTransition means the operation is not valid in the
	// flow's current state.
	ErrIllegalTransition = errors.New("illegal checkout status transition")

	// ErrInvalidPayment covers missing card fields or an unknown payment
	// method; the flow stays in Reviewing.
	ErrInvalidPayment = errors.New("invalid payment details")

	// ErrPaymentDeclined wraps a gateway decline. The cart and order
	// history are untouched; the user may retry.
	ErrPaymentDeclined = errors.New("payment declined")
)
