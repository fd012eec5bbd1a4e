package inmemory

import (
	"cmp"
	"context"
	"iter"
	"slices"

	"github.com/wichananm65/bookstore-backend/internal/order"
)

// OrderRepository is the ledger view of a Store.
type OrderRepository struct {
	s *Store
}

var _ order.Repository = (*OrderRepository)(nil)

func (r *OrderRepository) Create(ctx context.Context, o order.Order) (order.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.st.appendOrder(o), nil
}

// ListByUser takes a snapshot of the user's orders each time the sequence is
// ranged over and yields outside the lock.
func (r *OrderRepository) ListByUser(ctx context.Context, userID string) iter.Seq2[order.Order, error] {
	return func(yield func(order.Order, error) bool) {
		for _, o := range r.snapshot(userID) {
			if err := ctx.Err(); err != nil {
				yield(order.Order{}, err)
				return
			}
			if !yield(o, nil) {
				return
			}
		}
	}
}

func (r *OrderRepository) GetByID(ctx context.Context, userID string, id int64) (order.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, o := range r.s.st.orders {
		if o.ID == id && o.UserID == userID {
			o.Items = slices.Clone(o.Items)
			return o, nil
		}
	}
	return order.Order{}, order.ErrNotFound
}

func (r *OrderRepository) snapshot(userID string) []order.Order {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]order.Order, 0)
	for _, o := range r.s.st.orders {
		if o.UserID == userID {
			o.Items = slices.Clone(o.Items)
			out = append(out, o)
		}
	}
	// newest first, id breaks ties between equal timestamps
	slices.SortFunc(out, func(a, b order.Order) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}
