package repositories

import (
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
)

// MockStockMovementRepository is an in-memory implementation of StockMovementRepository.
type MockStockMovementRepository struct {
	movements []models.StockMovement
	mu        sync.RWMutex
}

// NewMockStockMovementRepository creates a new instance of MockStockMovementRepository.
func NewMockStockMovementRepository() *MockStockMovementRepository {
	return &MockStockMovementRepository{}
}

// Create records a stock movement.
func (r *MockStockMovementRepository) Create(movement *models.StockMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	movement.CreatedAt = time.Now()
	r.movements = append(r.movements, *movement)
	return nil
}

// GetByProductID returns the movement history for a product, newest first.
func (r *MockStockMovementRepository) GetByProductID(productID string) ([]models.StockMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []models.StockMovement
	for i := len(r.movements) - 1; i >= 0; i-- {
		if r.movements[i].ProductID == productID {
			results = append(results, r.movements[i])
		}
	}
	return results, nil
}

// GetByOrderID returns the movements associated with an order.
func (r *MockStockMovementRepository) GetByOrderID(orderID string) ([]models.StockMovement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []models.StockMovement
	for _, m := range r.movements {
		if m.OrderID == orderID {
			results = append(results, m)
		}
	}
	return results, nil
}
