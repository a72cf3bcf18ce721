package repositories

import (
	"storefront/internal/models"
)

// ProductRepository defines the interface for product data access.
//
// The stock primitives (DecrementStock, IncrementStock, SetStock) are the only
// way stock_quantity changes. Each commits as a single guarded statement per
// product and keeps is_available consistent with the resulting quantity, so
// concurrent reservations can never drive stock negative.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error

	// DecrementStock subtracts quantity from the product's stock only when the
	// current stock covers it, returning ErrInsufficientStock (and mutating
	// nothing) otherwise. Returns the product as persisted after the change.
	DecrementStock(id string, quantity int) (*models.Product, error)
	// IncrementStock adds quantity back to the product's stock.
	IncrementStock(id string, quantity int) (*models.Product, error)
	// SetStock overwrites the product's stock with an absolute quantity.
	SetStock(id string, quantity int) (*models.Product, error)

	// FindLowStock returns products with 0 < stock_quantity <= threshold.
	FindLowStock(threshold int) ([]models.Product, error)
	// FindOutOfStock returns products with stock_quantity <= 0.
	FindOutOfStock() ([]models.Product, error)
}
