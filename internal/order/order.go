package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is an immutable record of a completed checkout. Items are listed in
// the order the cart held them.
type Order struct {
	ID        int64           `json:"orderID"`
	UserID    string          `json:"userID"`
	Address   string          `json:"address"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"createdAt"`
	Items     []Item          `json:"items"`
}

// Item freezes what was bought: the quantity equals the stock removed for
// the book, and the title and unit price are copied at checkout time.
type Item struct {
	OrderID   int64           `json:"orderID"`
	BookID    int64           `json:"bookID"`
	Title     string          `json:"title"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Quantity returns the number of units across all items.
func (o Order) Quantity() int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}
