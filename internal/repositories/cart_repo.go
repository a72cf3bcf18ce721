package repositories

import (
	"storefront/internal/models"

	"github.com/shopspring/decimal"
)

// CartRepository defines the interface for cart data access.
type CartRepository interface {
	// GetByID returns the cart with its items loaded.
	GetByID(id string) (*models.Cart, error)
	GetByCustomerID(customerID string) (*models.Cart, error)
	Create(cart *models.Cart) error

	AddItem(item *models.CartItem) error
	UpdateItem(item *models.CartItem) error
	// RemoveItem deletes the line for the given product from the cart.
	RemoveItem(cartID, productID string) error
	// ClearItems removes every item from the cart and zeroes its total.
	ClearItems(cartID string) error
	UpdateTotal(cartID string, total decimal.Decimal) error
}
