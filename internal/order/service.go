package order

import (
	"context"
	"iter"
)

// Service is the read side of the order ledger. Orders are written only by
// checkout.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// ListOrders yields the user's orders, newest first, each with its items.
func (s *Service) ListOrders(ctx context.Context, userID string) iter.Seq2[Order, error] {
	if userID == "" {
		return func(func(Order, error) bool) {}
	}
	return s.repo.ListByUser(ctx, userID)
}

func (s *Service) GetOrder(ctx context.Context, userID string, id int64) (Order, error) {
	if userID == "" || id <= 0 {
		return Order{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, userID, id)
}

// Collect drains seq, stopping at the first error.
func Collect(seq iter.Seq2[Order, error]) ([]Order, error) {
	out := make([]Order, 0)
	for o, err := range seq {
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
