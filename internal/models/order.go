package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderStatus is the closed set of order lifecycle states.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
	StatusRefunded   OrderStatus = "refunded"
	StatusFailed     OrderStatus = "failed"
)

// AllOrderStatuses lists every known status, in lifecycle order.
func AllOrderStatuses() []OrderStatus {
	return []OrderStatus{
		StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded, StatusFailed,
	}
}

// IsValid reports whether s is a member of the status enum.
func (s OrderStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusShipped,
		StatusDelivered, StatusCancelled, StatusRefunded, StatusFailed:
		return true
	}
	return false
}

// Address is a structured shipping or billing address, persisted as a JSON column.
type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order represents a customer order with its pricing snapshot.
// The snapshot fields (Subtotal through TotalAmount) are written by the
// pricing pipeline and record what the customer was actually charged.
type Order struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	CustomerID string `json:"customer_id" gorm:"type:varchar(36);not null;index" validate:"required"`
	CartID     string `json:"cart_id" gorm:"type:varchar(36)"`

	Subtotal       decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
	DiscountCode   string          `json:"discount_code,omitempty" gorm:"type:varchar(50)"`
	DiscountAmount decimal.Decimal `json:"discount_amount" gorm:"type:decimal(12,2)"`
	TaxAmount      decimal.Decimal `json:"tax_amount" gorm:"type:decimal(12,2)"`
	TaxRegion      string          `json:"tax_region" gorm:"type:varchar(10);not null;default:DEFAULT"`
	TaxExempt      bool            `json:"tax_exempt" gorm:"not null;default:false"`
	ShippingCost   decimal.Decimal `json:"shipping_cost" gorm:"type:decimal(12,2)"`
	ShippingMethod string          `json:"shipping_method" gorm:"type:varchar(20);not null;default:standard"`
	TotalAmount    decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2)"`
	TotalWeight    float64         `json:"total_weight" gorm:"not null;default:1"`

	Status          OrderStatus `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	ShippingAddress *Address    `json:"shipping_address,omitempty" gorm:"serializer:json"`
	BillingAddress  *Address    `json:"billing_address,omitempty" gorm:"serializer:json"`
	OrderNotes      string      `json:"order_notes,omitempty" gorm:"type:text"`

	Items      []OrderItem `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	gorm.Model             // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// CanCancel reports whether the order may still be cancelled by the customer.
func (o *Order) CanCancel() bool {
	return o.Status == StatusPending || o.Status == StatusConfirmed
}

// CanModify reports whether the order's items may still be changed.
func (o *Order) CanModify() bool {
	return o.Status == StatusPending
}

// HoldsStock reports whether the order's status implies reserved inventory.
func (o *Order) HoldsStock() bool {
	switch o.Status {
	case StatusConfirmed, StatusProcessing, StatusShipped:
		return true
	}
	return false
}

// ItemCount returns the total quantity across all line items.
func (o *Order) ItemCount() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}

// OrderItem is a single line within an order. UnitPrice is frozen at order
// time and never follows the live product price.
type OrderItem struct {
	ID         string          `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	OrderID    string          `json:"order_id" gorm:"type:varchar(36);not null;index"`
	ProductID  string          `json:"product_id" gorm:"type:varchar(36);not null" validate:"required"`
	Quantity   int             `json:"quantity" gorm:"not null" validate:"required,gt=0"`
	UnitPrice  decimal.Decimal `json:"unit_price" gorm:"type:decimal(12,2)"`
	Subtotal   decimal.Decimal `json:"subtotal" gorm:"type:decimal(12,2)"`
	gorm.Model                 // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// CalculateSubtotal recomputes and returns the line subtotal (quantity x unit price).
func (i *OrderItem) CalculateSubtotal() decimal.Decimal {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	return i.Subtotal
}
