package address

import "time"

// Address is a saved shipping address. Checkout stores its text verbatim on
// the order; nothing here is validated beyond being non-empty.
type Address struct {
	AddressID   int64     `json:"addressId"`
	UserID      string    `json:"userId"`
	AddressDesc string    `json:"addressDesc"`
	Phone       string    `json:"phone"`
	AddressName string    `json:"addressName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Text renders the address the way it is written onto an order.
func (a Address) Text() string {
	switch {
	case a.AddressName == "":
		return a.AddressDesc
	case a.AddressDesc == "":
		return a.AddressName
	default:
		return a.AddressName + ", " + a.AddressDesc
	}
}
