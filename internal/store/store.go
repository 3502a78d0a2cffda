// Package store provides order persistence interfaces and implementations.
package store

import (
	"context"
	"errors"

	"github.com/rihemtrigui/Customer-Support-Bot/internal/domain"
)

// ErrOrderNotFound is returned by updates and deletes that target an order
// number with no matching row.
var ErrOrderNotFound = errors.New("order not found")

// Repository defines the interface for persisting orders.
type Repository interface {
	// GetOrder retrieves an order by its order number.
	// Returns (nil, nil) when no such order exists.
	GetOrder(ctx context.Context, orderNumber int) (*domain.Order, error)

	// PutOrder inserts a new order record.
	PutOrder(ctx context.Context, order *domain.Order) error

	// DeleteOrder removes an order. Returns ErrOrderNotFound if absent.
	DeleteOrder(ctx context.Context, orderNumber int) error

	// UpdateShippingAddress changes the shipping address of an order.
	UpdateShippingAddress(ctx context.Context, orderNumber int, address string) error

	// UpdatePaymentMethod changes the payment method of an order.
	UpdatePaymentMethod(ctx context.Context, orderNumber int, method string) error

	// NextOrderNumber atomically assigns the next order number.
	// Numbers stay unique even under concurrent callers.
	NextOrderNumber(ctx context.Context) (int, error)

	// ListOrders returns all orders, newest first.
	ListOrders(ctx context.Context) ([]*domain.Order, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
