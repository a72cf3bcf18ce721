package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product represents a product in the store.
// StockQuantity is mutated only through the StockManager; IsAvailable is kept
// consistent with StockQuantity by every stock mutation (false iff quantity is 0).
type Product struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Name          string          `json:"name" validate:"required,min=3,max=200"`
	Description   string          `json:"description" validate:"omitempty,max=2000"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(12,2)" validate:"required"`
	Rate          float64         `json:"rate" validate:"gte=0,lte=5"`
	CategoryID    string          `json:"category_id" gorm:"type:varchar(36)" validate:"omitempty,uuid"`
	StockQuantity int             `json:"stock_quantity" gorm:"not null;default:0" validate:"gte=0"`
	MinStockLevel int             `json:"min_stock_level" gorm:"not null;default:5" validate:"gte=0"`
	IsAvailable   bool            `json:"is_available" gorm:"not null;default:false"`
	gorm.Model    // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
