package inmemory

import (
	"context"

	"github.com/wichananm65/bookstore-backend/internal/book"
	"github.com/wichananm65/bookstore-backend/internal/cart"
)

// CartRepository is the cart view of a Store.
type CartRepository struct {
	s *Store
}

var _ cart.Repository = (*CartRepository)(nil)

func (r *CartRepository) FindByUser(ctx context.Context, userID string) (cart.Cart, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.s.st.findCart(userID)
}

func (r *CartRepository) Create(ctx context.Context, userID string) (cart.Cart, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	if _, ok := st.cartByUser[userID]; ok {
		return cart.Cart{}, cart.ErrCartExists
	}
	st.nextCartID++
	c := cart.Cart{ID: st.nextCartID, UserID: userID, CreatedAt: r.s.now().UTC()}
	st.carts[c.ID] = c
	st.cartByUser[userID] = c.ID
	return c, nil
}

func (r *CartRepository) AddItem(ctx context.Context, c cart.Cart, bookID int64, qty int) (cart.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	if !st.owned(c) {
		return cart.Item{}, cart.ErrCartNotFound
	}
	if _, ok := st.books[bookID]; !ok {
		return cart.Item{}, book.ErrNotFound
	}

	items := st.items[c.ID]
	for i := range items {
		if items[i].BookID == bookID {
			items[i].Quantity += qty
			return items[i], nil
		}
	}
	it := cart.Item{CartID: c.ID, BookID: bookID, Quantity: qty, AddedAt: r.s.now().UTC()}
	st.items[c.ID] = append(items, it)
	return it, nil
}

func (r *CartRepository) RemoveItem(ctx context.Context, c cart.Cart, bookID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if !r.s.st.owned(c) {
		return cart.ErrCartNotFound
	}
	items := r.s.st.items[c.ID]
	for i := range items {
		if items[i].BookID == bookID {
			r.s.st.items[c.ID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return cart.ErrItemNotFound
}

func (r *CartRepository) ListLines(ctx context.Context, c cart.Cart) ([]cart.Line, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	st := r.s.st
	if !st.owned(c) {
		return nil, cart.ErrCartNotFound
	}
	out := make([]cart.Line, 0, len(st.items[c.ID]))
	for _, it := range st.items[c.ID] {
		b, ok := st.books[it.BookID]
		if !ok {
			continue
		}
		out = append(out, cart.Line{Item: it, Book: b})
	}
	return out, nil
}
