package repositories

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all orders with their items.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	if err := r.db.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create persists the order and its line items in one transaction.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// Update persists changed order fields.
func (r *GORMOrderRepository) Update(order *models.Order) error {
	res := r.db.Omit("Items").Save(order)
	if res.Error != nil {
		return fmt.Errorf("failed to update order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s for update: %w", order.ID, ErrOrderNotFound)
	}
	return nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order with ID %s for status update: %w", id, ErrOrderNotFound)
	}
	return nil
}

// Delete removes the order together with its line items.
func (r *GORMOrderRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order with ID %s for deletion: %w", id, ErrOrderNotFound)
		}
		return nil
	})
}

// GetByStatus returns orders in the given status, newest first.
func (r *GORMOrderRepository) GetByStatus(status models.OrderStatus, limit int) ([]models.Order, error) {
	var orders []models.Order
	query := r.db.Preload("Items").Where("status = ?", status).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to get orders by status %s: %w", status, err)
	}
	return orders, nil
}

// CountByStatus returns the order count per status. Statuses with no orders
// are present with a zero count.
func (r *GORMOrderRepository) CountByStatus() (map[models.OrderStatus]int64, error) {
	type statusCount struct {
		Status models.OrderStatus
		Count  int64
	}
	var rows []statusCount
	err := r.db.Model(&models.Order{}).
		Select("status, count(id) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count orders by status: %w", err)
	}

	summary := make(map[models.OrderStatus]int64, len(models.AllOrderStatuses()))
	for _, status := range models.AllOrderStatuses() {
		summary[status] = 0
	}
	for _, row := range rows {
		summary[row.Status] = row.Count
	}
	return summary, nil
}

// CountCustomerOrdersSince counts the customer's orders created at or after
// since, excluding the given statuses.
func (r *GORMOrderRepository) CountCustomerOrdersSince(customerID string, since time.Time, exclude []models.OrderStatus) (int64, error) {
	var count int64
	query := r.db.Model(&models.Order{}).
		Where("customer_id = ? AND created_at >= ?", customerID, since)
	if len(exclude) > 0 {
		query = query.Where("status NOT IN ?", exclude)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count customer orders: %w", err)
	}
	return count, nil
}

// SumCustomerOrdersSince sums total_amount over the customer's orders created
// at or after since that are in one of the given statuses.
func (r *GORMOrderRepository) SumCustomerOrdersSince(customerID string, since time.Time, statuses []models.OrderStatus) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.db.Model(&models.Order{}).
		Select("SUM(total_amount)").
		Where("customer_id = ? AND created_at >= ? AND status IN ?", customerID, since, statuses).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum customer orders: %w", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
