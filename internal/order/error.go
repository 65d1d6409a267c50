package order

import "errors"

var (
	// -- Validation (rejected before any lock is taken) --
	ErrEmptyCartSelection       = errors.New("no cart lines selected")
	ErrInvalidCartSelection     = errors.New("cart selection does not match user's cart")
	ErrInvalidQuantity          = errors.New("quantity must be between 1 and the remaining quantity")
	ErrInvalidPointAmount       = errors.New("points to use must not be negative")
	ErrUnsupportedPaymentMethod = errors.New("unsupported payment method")
	ErrInvalidReturnReason      = errors.New("invalid return reason")

	// -- Business-rule conflicts (tx rolled back, no partial effects) --
	ErrInsufficientPoints  = errors.New("insufficient point balance")
	ErrOrderNotCancellable = errors.New("order is not in a cancellable state")
	ErrOrderNotReturnable  = errors.New("order is not in a returnable state")
	ErrReturnWindowExpired = errors.New("return window has expired")
	ErrItemNotReturnable   = errors.New("item status does not permit this transition")
	ErrInvalidTransition   = errors.New("order status transition not permitted")

	// -- Not found / access --
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderItemNotFound = errors.New("order item not found")
	ErrUnauthorized      = errors.New("cannot access another user's order")

	// -- Data integrity (logged loudly, never worked around) --
	ErrMissingDeliveredAt = errors.New("delivered order has no delivered timestamp")
)
