package repositories

import "storefront/internal/models"

// StockMovementRepository defines the interface for stock movement audit records.
type StockMovementRepository interface {
	Create(movement *models.StockMovement) error
	GetByProductID(productID string) ([]models.StockMovement, error)
	GetByOrderID(orderID string) ([]models.StockMovement, error)
}
