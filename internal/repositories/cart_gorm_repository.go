package repositories

import (
	"errors"
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMCartRepository is a GORM implementation of CartRepository.
type GORMCartRepository struct {
	db *gorm.DB
}

// NewGORMCartRepository creates a new instance of GORMCartRepository.
func NewGORMCartRepository(db *gorm.DB) *GORMCartRepository {
	return &GORMCartRepository{
		db: db,
	}
}

// GetByID retrieves a cart with its items.
func (r *GORMCartRepository) GetByID(id string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Preload("Items").First(&cart, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart with ID %s: %w", id, ErrCartNotFound)
		}
		return nil, fmt.Errorf("failed to get cart by ID %s: %w", id, err)
	}
	return &cart, nil
}

// GetByCustomerID retrieves the customer's cart with its items.
func (r *GORMCartRepository) GetByCustomerID(customerID string) (*models.Cart, error) {
	var cart models.Cart
	if err := r.db.Preload("Items").First(&cart, "customer_id = ?", customerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("cart for customer %s: %w", customerID, ErrCartNotFound)
		}
		return nil, fmt.Errorf("failed to get cart for customer %s: %w", customerID, err)
	}
	return &cart, nil
}

// Create creates a new cart.
func (r *GORMCartRepository) Create(cart *models.Cart) error {
	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	if err := r.db.Create(cart).Error; err != nil {
		return fmt.Errorf("failed to create cart: %w", err)
	}
	return nil
}

// AddItem adds a line item to a cart.
func (r *GORMCartRepository) AddItem(item *models.CartItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if err := r.db.Create(item).Error; err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}
	return nil
}

// UpdateItem persists changed cart item fields.
func (r *GORMCartRepository) UpdateItem(item *models.CartItem) error {
	res := r.db.Save(item)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item with ID %s for update: %w", item.ID, ErrCartItemNotFound)
	}
	return nil
}

// RemoveItem deletes the line for the given product from the cart.
func (r *GORMCartRepository) RemoveItem(cartID, productID string) error {
	res := r.db.Where("cart_id = ? AND product_id = ?", cartID, productID).Delete(&models.CartItem{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove cart item: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart item for product %s in cart %s: %w", productID, cartID, ErrCartItemNotFound)
	}
	return nil
}

// ClearItems removes every item from the cart and zeroes its total.
func (r *GORMCartRepository) ClearItems(cartID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error; err != nil {
			return fmt.Errorf("failed to clear cart items: %w", err)
		}
		if err := tx.Model(&models.Cart{}).Where("id = ?", cartID).Update("total_price", decimal.Zero).Error; err != nil {
			return fmt.Errorf("failed to reset cart total: %w", err)
		}
		return nil
	})
}

// UpdateTotal persists the cart's derived total.
func (r *GORMCartRepository) UpdateTotal(cartID string, total decimal.Decimal) error {
	res := r.db.Model(&models.Cart{}).Where("id = ?", cartID).Update("total_price", total)
	if res.Error != nil {
		return fmt.Errorf("failed to update cart total: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("cart with ID %s for total update: %w", cartID, ErrCartNotFound)
	}
	return nil
}
