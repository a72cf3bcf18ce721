package repositories

import (
	"fmt"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMStockMovementRepository is a GORM implementation of StockMovementRepository.
type GORMStockMovementRepository struct {
	db *gorm.DB
}

// NewGORMStockMovementRepository creates a new instance of GORMStockMovementRepository.
func NewGORMStockMovementRepository(db *gorm.DB) *GORMStockMovementRepository {
	return &GORMStockMovementRepository{
		db: db,
	}
}

// Create persists a stock movement record.
func (r *GORMStockMovementRepository) Create(movement *models.StockMovement) error {
	if movement.ID == "" {
		movement.ID = uuid.New().String()
	}
	if err := r.db.Create(movement).Error; err != nil {
		return fmt.Errorf("failed to create stock movement: %w", err)
	}
	return nil
}

// GetByProductID returns the movement history for a product, newest first.
func (r *GORMStockMovementRepository) GetByProductID(productID string) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.db.Where("product_id = ?", productID).Order("created_at DESC").Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to get stock movements for product %s: %w", productID, err)
	}
	return movements, nil
}

// GetByOrderID returns the movements associated with an order.
func (r *GORMStockMovementRepository) GetByOrderID(orderID string) ([]models.StockMovement, error) {
	var movements []models.StockMovement
	if err := r.db.Where("order_id = ?", orderID).Order("created_at DESC").Find(&movements).Error; err != nil {
		return nil, fmt.Errorf("failed to get stock movements for order %s: %w", orderID, err)
	}
	return movements, nil
}
