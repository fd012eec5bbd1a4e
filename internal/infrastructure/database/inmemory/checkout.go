package inmemory

import (
	"context"
	"slices"
	"time"

	"github.com/wichananm65/bookstore-backend/internal/book"
	"github.com/wichananm65/bookstore-backend/internal/cart"
	"github.com/wichananm65/bookstore-backend/internal/order"
)

// storeTx operates on the private copy handed out by WithinTx. The Store's
// write lock is held for its whole lifetime, so it takes no locks itself.
type storeTx struct {
	st  *state
	now func() time.Time
}

func (t *storeTx) FindCart(ctx context.Context, userID string) (cart.Cart, error) {
	return t.st.findCart(userID)
}

func (t *storeTx) CartItems(ctx context.Context, cartID int64) ([]cart.Item, error) {
	return slices.Clone(t.st.items[cartID]), nil
}

func (t *storeTx) LockBooks(ctx context.Context, ids []int64) (map[int64]book.Book, error) {
	out := make(map[int64]book.Book, len(ids))
	for _, id := range ids {
		if b, ok := t.st.books[id]; ok {
			out[id] = b
		}
	}
	return out, nil
}

func (t *storeTx) DecrementStock(ctx context.Context, bookID int64, qty int) (int, error) {
	return t.st.decrementStock(bookID, qty, t.now().UTC())
}

func (t *storeTx) CreateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	return t.st.appendOrder(o), nil
}

func (t *storeTx) ClearCart(ctx context.Context, cartID int64) error {
	delete(t.st.items, cartID)
	return nil
}
