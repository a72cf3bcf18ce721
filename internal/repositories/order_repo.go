package repositories

import (
	"time"

	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	// GetByID returns the order with its line items loaded.
	GetByID(id string) (*models.Order, error)
	// Create persists the order and its line items together.
	Create(order *models.Order) error
	// Update persists changed order fields (pricing snapshot, notes).
	Update(order *models.Order) error
	UpdateStatus(id string, status models.OrderStatus) error
	// Delete removes the order together with its line items.
	Delete(id string) error

	// GetByStatus returns orders in the given status, newest first.
	// limit <= 0 means no limit.
	GetByStatus(status models.OrderStatus, limit int) ([]models.Order, error)
	CountByStatus() (map[models.OrderStatus]int64, error)

	// CountCustomerOrdersSince counts the customer's orders created at or
	// after since, excluding the given statuses.
	CountCustomerOrdersSince(customerID string, since time.Time, exclude []models.OrderStatus) (int64, error)
	// SumCustomerOrdersSince sums total_amount over the customer's orders
	// created at or after since that are in one of the given statuses.
	SumCustomerOrdersSince(customerID string, since time.Time, statuses []models.OrderStatus) (decimal.Decimal, error)
}
