package inmemory

import (
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/wichananm65/bookstore-backend/internal/book"
	"github.com/wichananm65/bookstore-backend/internal/cart"
	"github.com/wichananm65/bookstore-backend/internal/checkout"
	"github.com/wichananm65/bookstore-backend/internal/order"
)

// Store keeps books, carts and orders in memory behind one lock. It backs the
// service when no database is configured and is the reference store in tests.
type Store struct {
	mu  sync.RWMutex
	st  *state
	now func() time.Time
}

var _ checkout.Repository = (*Store)(nil)

func New() *Store {
	return &Store{st: newState(), now: time.Now}
}

func (s *Store) Books() *BookRepository   { return &BookRepository{s: s} }
func (s *Store) Carts() *CartRepository   { return &CartRepository{s: s} }
func (s *Store) Orders() *OrderRepository { return &OrderRepository{s: s} }

// WithinTx runs fn against a private copy of the data while holding the write
// lock, and publishes the copy only when fn succeeds. Checkouts are therefore
// serialized and a failed one leaves no trace.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx checkout.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, &storeTx{st: work, now: s.now}); err != nil {
		return err
	}
	s.st = work
	return nil
}

type state struct {
	books       map[int64]book.Book
	carts       map[int64]cart.Cart
	cartByUser  map[string]int64
	items       map[int64][]cart.Item
	orders      []order.Order
	nextBookID  int64
	nextCartID  int64
	nextOrderID int64
}

func newState() *state {
	return &state{
		books:      make(map[int64]book.Book),
		carts:      make(map[int64]cart.Cart),
		cartByUser: make(map[string]int64),
		items:      make(map[int64][]cart.Item),
	}
}

// clone copies everything mutable. Orders are immutable once stored, so their
// item slices are shared.
func (s *state) clone() *state {
	c := *s
	c.books = maps.Clone(s.books)
	c.carts = maps.Clone(s.carts)
	c.cartByUser = maps.Clone(s.cartByUser)
	c.items = make(map[int64][]cart.Item, len(s.items))
	for id, items := range s.items {
		c.items[id] = slices.Clone(items)
	}
	c.orders = slices.Clone(s.orders)
	return &c
}

func (s *state) decrementStock(id int64, qty int, now time.Time) (int, error) {
	b, ok := s.books[id]
	if !ok {
		return 0, book.ErrNotFound
	}
	if !b.InStock(qty) {
		return 0, &book.InsufficientStockError{BookID: id, Requested: qty, Available: b.Stock}
	}
	b.Stock -= qty
	b.UpdatedAt = now
	s.books[id] = b
	return b.Stock, nil
}

func (s *state) findCart(userID string) (cart.Cart, error) {
	id, ok := s.cartByUser[userID]
	if !ok {
		return cart.Cart{}, cart.ErrCartNotFound
	}
	return s.carts[id], nil
}

// owned reports whether the store still assigns c.ID to c.UserID.
func (s *state) owned(c cart.Cart) bool {
	got, ok := s.carts[c.ID]
	return ok && got.UserID == c.UserID
}

func (s *state) appendOrder(o order.Order) order.Order {
	s.nextOrderID++
	o.ID = s.nextOrderID
	o.Items = slices.Clone(o.Items)
	for i := range o.Items {
		o.Items[i].OrderID = o.ID
	}
	s.orders = append(s.orders, o)
	return o
}
