package repositories

import (
	"fmt"
	"sync"
	"time"

	"storefront/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MockOrderRepository is an in-memory implementation of OrderRepository.
type MockOrderRepository struct {
	orders map[string]models.Order
	mu     sync.RWMutex
}

// NewMockOrderRepository creates a new instance of MockOrderRepository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// GetAll returns all orders.
func (r *MockOrderRepository) GetAll() ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orderList := make([]models.Order, 0, len(r.orders))
	for _, order := range r.orders {
		orderList = append(orderList, order)
	}
	return orderList, nil
}

// GetByID returns an order by its ID.
func (r *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrOrderNotFound)
	}
	return &order, nil
}

// Create adds a new order with its items.
func (r *MockOrderRepository) Create(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// Update replaces the stored order fields.
func (r *MockOrderRepository) Update(order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("order with ID %s for update: %w", order.ID, ErrOrderNotFound)
	}
	order.UpdatedAt = time.Now()
	r.orders[order.ID] = *order
	return nil
}

// UpdateStatus updates the status of an order.
func (r *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s for status update: %w", id, ErrOrderNotFound)
	}
	order.Status = status
	order.UpdatedAt = time.Now()
	r.orders[id] = order
	return nil
}

// Delete removes an order and its items.
func (r *MockOrderRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.orders[id]
	if !ok {
		return fmt.Errorf("order with ID %s for deletion: %w", id, ErrOrderNotFound)
	}
	delete(r.orders, id)
	return nil
}

// GetByStatus returns orders in the given status.
func (r *MockOrderRepository) GetByStatus(status models.OrderStatus, limit int) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []models.Order
	for _, order := range r.orders {
		if order.Status == status {
			results = append(results, order)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// CountByStatus returns the order count per status.
func (r *MockOrderRepository) CountByStatus() (map[models.OrderStatus]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := make(map[models.OrderStatus]int64, len(models.AllOrderStatuses()))
	for _, status := range models.AllOrderStatuses() {
		summary[status] = 0
	}
	for _, order := range r.orders {
		summary[order.Status]++
	}
	return summary, nil
}

// CountCustomerOrdersSince counts the customer's orders created at or after
// since, excluding the given statuses.
func (r *MockOrderRepository) CountCustomerOrdersSince(customerID string, since time.Time, exclude []models.OrderStatus) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	excluded := make(map[models.OrderStatus]bool, len(exclude))
	for _, status := range exclude {
		excluded[status] = true
	}

	var count int64
	for _, order := range r.orders {
		if order.CustomerID == customerID && !order.CreatedAt.Before(since) && !excluded[order.Status] {
			count++
		}
	}
	return count, nil
}

// SumCustomerOrdersSince sums total_amount over matching orders.
func (r *MockOrderRepository) SumCustomerOrdersSince(customerID string, since time.Time, statuses []models.OrderStatus) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	included := make(map[models.OrderStatus]bool, len(statuses))
	for _, status := range statuses {
		included[status] = true
	}

	total := decimal.Zero
	for _, order := range r.orders {
		if order.CustomerID == customerID && !order.CreatedAt.Before(since) && included[order.Status] {
			total = total.Add(order.TotalAmount)
		}
	}
	return total, nil
}
