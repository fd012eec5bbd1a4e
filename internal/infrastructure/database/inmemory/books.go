package inmemory

import (
	"cmp"
	"context"
	"slices"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/bookstore-backend/internal/book"
)

// BookRepository is the catalog view of a Store.
type BookRepository struct {
	s *Store
}

var _ book.Repository = (*BookRepository)(nil)

func (r *BookRepository) List(ctx context.Context) ([]book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]book.Book, 0, len(r.s.st.books))
	for _, b := range r.s.st.books {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b book.Book) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r *BookRepository) GetByID(ctx context.Context, id int64) (book.Book, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.st.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (r *BookRepository) Create(ctx context.Context, b book.Book) (book.Book, error) {
	if b.Price.IsNegative() || b.Stock < 0 {
		return book.Book{}, book.ErrInvalidBook
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	st := r.s.st
	st.nextBookID++
	b.ID = st.nextBookID
	b.CreatedAt = r.s.now().UTC()
	b.UpdatedAt = b.CreatedAt
	st.books[b.ID] = b
	return b, nil
}

func (r *BookRepository) DecrementStock(ctx context.Context, id int64, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.st.decrementStock(id, qty, r.s.now().UTC())
}

func (r *BookRepository) Restock(ctx context.Context, id int64, qty int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.st.books[id]
	if !ok {
		return 0, book.ErrNotFound
	}
	b.Stock += qty
	b.UpdatedAt = r.s.now().UTC()
	r.s.st.books[id] = b
	return b.Stock, nil
}

func (r *BookRepository) Reprice(ctx context.Context, id int64, price decimal.Decimal) (book.Book, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	b, ok := r.s.st.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	b.Price = price
	b.UpdatedAt = r.s.now().UTC()
	r.s.st.books[id] = b
	return b, nil
}
