package checkout

import "errors"

var (
	// ErrEmptyCart is returned when the user has no cart or the cart holds
	// no items. Nothing is written.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrStorageConflict marks a transaction aborted by the store because of
	// concurrent access. The whole checkout is safe to retry.
	ErrStorageConflict = errors.New("storage conflict, please retry")
	ErrInvalidUser     = errors.New("user id is required")
)
