package services

import (
	"fmt"
	"log"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// OrderService handles order retrieval and removal. Status changes go through
// the workflow manager, not this service.
type OrderService struct {
	orderRepo    repositories.OrderRepository
	stockManager *StockManager
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repositories.OrderRepository, stockManager *StockManager) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		stockManager: stockManager,
	}
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order with its items.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// DeleteOrder removes an order and its items. Orders in a stock-holding
// status get their reserved units released first so inventory stays
// consistent with the remaining orders.
func (s *OrderService) DeleteOrder(id string) error {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		return err
	}

	if order.HoldsStock() {
		for _, item := range order.Items {
			result, relErr := s.stockManager.ReleaseStock(item.ProductID, item.Quantity, order.ID)
			if relErr != nil || !result.Success {
				log.Printf("WARNING: failed to release %d units of product %s while deleting order %s",
					item.Quantity, item.ProductID, order.ID)
			}
		}
	}

	if err := s.orderRepo.Delete(id); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	log.Printf("order %s deleted (status was %s)", id, order.Status)
	return nil
}
