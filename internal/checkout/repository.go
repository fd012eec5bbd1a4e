package checkout

import (
	"context"

	"github.com/wichananm65/bookstore-backend/internal/book"
	"github.com/wichananm65/bookstore-backend/internal/cart"
	"github.com/wichananm65/bookstore-backend/internal/order"
)

// Repository runs checkout's unit of work. WithinTx commits when fn returns
// nil and discards every write made through tx otherwise. Implementations
// report concurrent-access aborts as ErrStorageConflict.
type Repository interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the view of the stores available inside one checkout.
type Tx interface {
	// FindCart returns cart.ErrCartNotFound when the user never had a cart.
	FindCart(ctx context.Context, userID string) (cart.Cart, error)
	// CartItems returns the items in insertion order.
	CartItems(ctx context.Context, cartID int64) ([]cart.Item, error)
	// LockBooks reads fresh rows for ids and holds them until the unit of
	// work ends. Unknown ids are absent from the map.
	LockBooks(ctx context.Context, ids []int64) (map[int64]book.Book, error)
	DecrementStock(ctx context.Context, bookID int64, qty int) (int, error)
	CreateOrder(ctx context.Context, o order.Order) (order.Order, error)
	ClearCart(ctx context.Context, cartID int64) error
}
