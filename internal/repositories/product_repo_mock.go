package repositories

import (
	"fmt"
	"sync"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// All stock primitives mutate under one lock, which gives the same
// no-oversell guarantee the GORM implementation gets from its guarded UPDATE.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// GetAll returns all products.
func (r *MockProductRepository) GetAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, p)
	}
	return productList, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.IsAvailable = product.StockQuantity > 0
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s for update: %w", product.ID, ErrProductNotFound)
	}
	product.IsAvailable = product.StockQuantity > 0
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s for deletion: %w", id, ErrProductNotFound)
	}
	delete(r.products, id)
	return nil
}

// DecrementStock checks and decrements under the write lock.
func (r *MockProductRepository) DecrementStock(id string, quantity int) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	if product.StockQuantity < quantity {
		return nil, fmt.Errorf("product %s: %w", id, ErrInsufficientStock)
	}
	product.StockQuantity -= quantity
	product.IsAvailable = product.StockQuantity > 0
	r.products[id] = product
	return &product, nil
}

// IncrementStock adds quantity back to the product's stock.
func (r *MockProductRepository) IncrementStock(id string, quantity int) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	product.StockQuantity += quantity
	product.IsAvailable = product.StockQuantity > 0
	r.products[id] = product
	return &product, nil
}

// SetStock overwrites the product's stock with an absolute quantity.
func (r *MockProductRepository) SetStock(id string, quantity int) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	product.StockQuantity = quantity
	product.IsAvailable = quantity > 0
	r.products[id] = product
	return &product, nil
}

// FindLowStock returns products with positive stock at or below the threshold.
func (r *MockProductRepository) FindLowStock(threshold int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []models.Product
	for _, p := range r.products {
		if p.StockQuantity > 0 && p.StockQuantity <= threshold {
			results = append(results, p)
		}
	}
	return results, nil
}

// FindOutOfStock returns products with no remaining stock.
func (r *MockProductRepository) FindOutOfStock() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []models.Product
	for _, p := range r.products {
		if p.StockQuantity <= 0 {
			results = append(results, p)
		}
	}
	return results, nil
}
