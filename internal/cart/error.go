package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")

	// -- Resource State --
	ErrLineNotFound      = errors.New("cart line not found")
	ErrLineAlreadyExists = errors.New("cart line already exists")
	ErrCartEmpty         = errors.New("cart is empty")

	// Returned when a requested line subset does not fully belong to the user.
	ErrSelectionMismatch = errors.New("cart selection does not match user's cart")
)
