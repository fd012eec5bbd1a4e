package cart

import (
	"context"
	"errors"
)

var (
	ErrCartNotFound    = errors.New("cart not found")
	ErrCartExists      = errors.New("cart already exists for user")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidUser     = errors.New("user id is required")
)

// Repository persists carts and their items. Create must enforce one cart per
// user and report a lost race as ErrCartExists.
//
// The item methods act on c only while the store still assigns c.ID to
// c.UserID, and report ErrCartNotFound otherwise.
type Repository interface {
	FindByUser(ctx context.Context, userID string) (Cart, error)
	Create(ctx context.Context, userID string) (Cart, error)
	// AddItem inserts the line or adds qty to the existing one in a single
	// atomic step.
	AddItem(ctx context.Context, c Cart, bookID int64, qty int) (Item, error)
	RemoveItem(ctx context.Context, c Cart, bookID int64) error
	// ListLines returns the items in insertion order joined with their books.
	ListLines(ctx context.Context, c Cart) ([]Line, error)
}
