package cart

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/wichananm65/bookstore-backend/internal/book"
)

// Cart is the single mutable cart owned by a user. It is created on first use
// and emptied, never deleted, after checkout.
type Cart struct {
	ID        int64     `json:"cartID"`
	UserID    string    `json:"userID"`
	CreatedAt time.Time `json:"createdAt"`
}

// Item is one (cart, book) line. Items carry no price; prices are resolved
// from the catalog whenever the cart is read or checked out.
type Item struct {
	CartID   int64     `json:"-"`
	BookID   int64     `json:"bookID"`
	Quantity int       `json:"quantity"`
	AddedAt  time.Time `json:"addedAt"`
}

// Line is an item joined with the live catalog entry.
type Line struct {
	Item
	Book     book.Book       `json:"book"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

// Contents is a priced view of a cart.
type Contents struct {
	Cart  Cart            `json:"cart"`
	Items []Line          `json:"items"`
	Total decimal.Decimal `json:"total"`
}

func newContents(c Cart, lines []Line) Contents {
	total := decimal.Zero
	for i := range lines {
		lines[i].Subtotal = lines[i].Book.Price.Mul(decimal.NewFromInt(int64(lines[i].Quantity)))
		total = total.Add(lines[i].Subtotal)
	}
	return Contents{Cart: c, Items: lines, Total: total}
}
