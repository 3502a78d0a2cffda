// Package domain contains core domain types for the support bot.
package domain

import "strings"

// Payment method values accepted on an order. Stored values are compared
// case-insensitively; anything outside this set is a data inconsistency.
const (
	PaymentOnline = "online"
	PaymentCash   = "cash"
)

// Order represents a placed order keyed by its assigned order number.
type Order struct {
	OrderNumber     int    `json:"order_number"`
	ClientName      string `json:"clients_name"`
	ProductType     string `json:"product_type"`
	ProductName     string `json:"product_name"`
	ProductNumber   string `json:"product_number"`
	PaymentMethod   string `json:"payment_method"`
	ShippingAddress string `json:"shipping_address"`
	EmailAddress    string `json:"email_address"`
}

// PaidOnline returns true if the order was paid with a card.
func (o *Order) PaidOnline() bool {
	return strings.EqualFold(o.PaymentMethod, PaymentOnline)
}

// PaidCash returns true if the order is cash on delivery.
func (o *Order) PaidCash() bool {
	return strings.EqualFold(o.PaymentMethod, PaymentCash)
}
