package models

import "gorm.io/gorm"

// Stock movement types.
const (
	MovementReserved   = "reserved"
	MovementReleased   = "released"
	MovementAdjustment = "adjustment"
)

// StockMovement is the audit record written for every stock mutation.
// PreviousStock and NewStock allow manual reconciliation when automatic
// compensation is insufficient.
type StockMovement struct {
	ID             string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ProductID      string `json:"product_id" gorm:"type:varchar(36);not null;index"`
	MovementType   string `json:"movement_type" gorm:"type:varchar(20);not null"`
	QuantityChange int    `json:"quantity_change" gorm:"not null"`
	PreviousStock  int    `json:"previous_stock" gorm:"not null"`
	NewStock       int    `json:"new_stock" gorm:"not null"`
	OrderID        string `json:"order_id,omitempty" gorm:"type:varchar(36);index"`
	Notes          string `json:"notes,omitempty" gorm:"type:text"`
	gorm.Model            // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}
