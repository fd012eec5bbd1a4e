package book

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = errors.New("book not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("quantity must be positive")
	ErrInvalidBook       = errors.New("invalid book")
	ErrInvalidPrice      = errors.New("price must not be negative")
)

// InsufficientStockError names the book that could not cover a request.
// errors.Is(err, ErrInsufficientStock) matches it.
type InsufficientStockError struct {
	BookID    int64
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for book %d: requested %d, available %d", e.BookID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// Repository is the catalog store.
type Repository interface {
	List(ctx context.Context) ([]Book, error)
	GetByID(ctx context.Context, id int64) (Book, error)
	// Create inserts a book; used by seeding and tests.
	Create(ctx context.Context, b Book) (Book, error)
	// DecrementStock atomically removes qty units and returns the new stock.
	// It fails with *InsufficientStockError when qty exceeds the stock.
	DecrementStock(ctx context.Context, id int64, qty int) (int, error)
	// Restock adds qty units and returns the new stock.
	Restock(ctx context.Context, id int64, qty int) (int, error)
	// Reprice sets the unit price. Carts pick the change up on their next
	// read; placed orders keep the price they were charged.
	Reprice(ctx context.Context, id int64, price decimal.Decimal) (Book, error)
}
