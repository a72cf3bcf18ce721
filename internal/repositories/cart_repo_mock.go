package repositories

import (
	"fmt"
	"sync"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockCartRepository is an in-memory implementation of CartRepository.
type MockCartRepository struct {
	carts map[string]models.Cart
	mu    sync.RWMutex
}

// NewMockCartRepository creates a new instance of MockCartRepository.
func NewMockCartRepository() *MockCartRepository {
	return &MockCartRepository{
		carts: make(map[string]models.Cart),
	}
}

// GetByID returns a cart by its ID.
func (r *MockCartRepository) GetByID(id string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[id]
	if !ok {
		return nil, fmt.Errorf("cart with ID %s: %w", id, ErrCartNotFound)
	}
	items := make([]models.CartItem, len(cart.Items))
	copy(items, cart.Items)
	cart.Items = items
	return &cart, nil
}

// GetByCustomerID returns the customer's cart.
func (r *MockCartRepository) GetByCustomerID(customerID string) (*models.Cart, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, cart := range r.carts {
		if cart.CustomerID == customerID {
			return &cart, nil
		}
	}
	return nil, fmt.Errorf("cart for customer %s: %w", customerID, ErrCartNotFound)
}

// Create adds a new cart.
func (r *MockCartRepository) Create(cart *models.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cart.ID == "" {
		cart.ID = uuid.New().String()
	}
	for i := range cart.Items {
		if cart.Items[i].ID == "" {
			cart.Items[i].ID = uuid.New().String()
		}
		cart.Items[i].CartID = cart.ID
	}
	r.carts[cart.ID] = *cart
	return nil
}

// AddItem adds a line item to a cart.
func (r *MockCartRepository) AddItem(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[item.CartID]
	if !ok {
		return fmt.Errorf("cart with ID %s: %w", item.CartID, ErrCartNotFound)
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	cart.Items = append(cart.Items, *item)
	r.carts[cart.ID] = cart
	return nil
}

// UpdateItem replaces the stored cart item.
func (r *MockCartRepository) UpdateItem(item *models.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[item.CartID]
	if !ok {
		return fmt.Errorf("cart with ID %s: %w", item.CartID, ErrCartNotFound)
	}
	for i := range cart.Items {
		if cart.Items[i].ID == item.ID {
			cart.Items[i] = *item
			r.carts[cart.ID] = cart
			return nil
		}
	}
	return fmt.Errorf("cart item with ID %s for update: %w", item.ID, ErrCartItemNotFound)
}

// RemoveItem deletes the line for the given product from the cart.
func (r *MockCartRepository) RemoveItem(cartID, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return fmt.Errorf("cart with ID %s: %w", cartID, ErrCartNotFound)
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			r.carts[cartID] = cart
			return nil
		}
	}
	return fmt.Errorf("cart item for product %s in cart %s: %w", productID, cartID, ErrCartItemNotFound)
}

// ClearItems removes every item from the cart and zeroes its total.
func (r *MockCartRepository) ClearItems(cartID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return fmt.Errorf("cart with ID %s: %w", cartID, ErrCartNotFound)
	}
	cart.Items = nil
	cart.TotalPrice = decimal.Zero
	r.carts[cartID] = cart
	return nil
}

// UpdateTotal persists the cart's derived total.
func (r *MockCartRepository) UpdateTotal(cartID string, total decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return fmt.Errorf("cart with ID %s for total update: %w", cartID, ErrCartNotFound)
	}
	cart.TotalPrice = total
	r.carts[cartID] = cart
	return nil
}
