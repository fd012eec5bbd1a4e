package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// Book is a catalog entry and its purchasable stock. Stock is never negative;
// it is only decremented by checkout and only incremented by restocking.
type Book struct {
	ID        int64           `json:"bookID"`
	Title     string          `json:"title"`
	Author    string          `json:"author"`
	Price     decimal.Decimal `json:"price"`
	Stock     int             `json:"stock"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// InStock reports whether qty units can currently be sold.
func (b Book) InStock(qty int) bool {
	return qty <= b.Stock
}
