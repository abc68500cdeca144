package errors

import (
	"errors"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrOrderNotFound   = errors.New("order not found")
	ErrStaleCartLine   = errors.New("cart line references a product that no longer exists")
	ErrCartEmpty       = errors.New("cart is empty")
	ErrSessionInvalid  = errors.New("invalid session")

	// ErrCheckoutProvider marks failures talking to the external payment
	// provider, as opposed to failures of our own making.
	ErrCheckoutProvider = errors.New("checkout provider unavailable")
)
