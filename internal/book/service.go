package book

import (
	"context"

	"github.com/shopspring/decimal"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context) ([]Book, error) {
	return s.repo.List(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (Book, error) {
	if id <= 0 {
		return Book{}, ErrNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Create validates and stores a new catalog entry.
func (s *Service) Create(ctx context.Context, b Book) (Book, error) {
	if b.Title == "" || b.Price.IsNegative() || b.Stock < 0 {
		return Book{}, ErrInvalidBook
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) DecrementStock(ctx context.Context, id int64, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	if id <= 0 {
		return 0, ErrNotFound
	}
	return s.repo.DecrementStock(ctx, id, qty)
}

// Restock is the entry point for the restocking collaborator. It only ever
// increases stock.
func (s *Service) Restock(ctx context.Context, id int64, qty int) (int, error) {
	if qty <= 0 {
		return 0, ErrInvalidQuantity
	}
	if id <= 0 {
		return 0, ErrNotFound
	}
	return s.repo.Restock(ctx, id, qty)
}

// Reprice is the catalog collaborator's price update.
func (s *Service) Reprice(ctx context.Context, id int64, price decimal.Decimal) (Book, error) {
	if price.IsNegative() {
		return Book{}, ErrInvalidPrice
	}
	if id <= 0 {
		return Book{}, ErrNotFound
	}
	return s.repo.Reprice(ctx, id, price.Round(2))
}
