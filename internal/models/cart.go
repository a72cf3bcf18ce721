package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is the pre-order staging area for a customer. Its items are cleared
// only after a successful conversion to an order, never before.
type Cart struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CustomerID string          `json:"customer_id" gorm:"type:varchar(36);not null;index" validate:"required"`
	TotalPrice decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2)"`
	Items      []CartItem      `json:"items" gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	gorm.Model                 // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// RecalculateTotal recomputes TotalPrice as the sum of item subtotals.
func (c *Cart) RecalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Items {
		total = total.Add(c.Items[i].CalculateSubtotal())
	}
	c.TotalPrice = total
	return total
}

// CartItem is a single product/quantity entry within a cart. UnitPrice is the
// product price captured when the item was added.
type CartItem struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CartID     string          `json:"cart_id" gorm:"type:varchar(36);not null;index"`
	ProductID  string          `json:"product_id" gorm:"type:varchar(36);not null" validate:"required"`
	Quantity   int             `json:"quantity" gorm:"not null;default:1" validate:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2)"`
	Subtotal   decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
	gorm.Model                 // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// CalculateSubtotal recomputes and returns the line subtotal (quantity x unit price).
func (i *CartItem) CalculateSubtotal() decimal.Decimal {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	return i.Subtotal
}
