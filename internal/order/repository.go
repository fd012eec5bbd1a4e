package order

import (
	"context"
	"errors"
	"iter"
)

var ErrNotFound = errors.New("order not found")

// Repository is the append-only order ledger. There is deliberately no update
// or delete.
type Repository interface {
	// Create stores the order and its items and returns it with ids assigned.
	Create(ctx context.Context, o Order) (Order, error)
	// ListByUser yields the user's orders newest first. Every range over the
	// returned sequence reads the ledger again.
	ListByUser(ctx context.Context, userID string) iter.Seq2[Order, error]
	GetByID(ctx context.Context, userID string, id int64) (Order, error)
}
