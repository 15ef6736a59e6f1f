package cart

import "errors"

var (
	// ErrInvalidInput means the add-item arguments were malformed; the cart
	// is left unchanged.
	ErrInvalidInput = errors.New("invalid cart item input")

	// ErrSlotNotFound means a quantity update targeted an absent slot.
	// Callers must not rely on UpdateQuantity to create entries.
	ErrSlotNotFound = errors.New("cart slot not found")

	// ErrCartNotFound is returned by repositories when no cart is stored
	// for the user.
	ErrCartNotFound = errors.New("cart not found")
)
