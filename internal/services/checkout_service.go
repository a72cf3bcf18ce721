package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/shopspring/decimal"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

// CheckoutOptions carries the customer's pricing choices for checkout.
type CheckoutOptions struct {
	DiscountCode    string          `json:"discount_code"`
	TaxRegion       string          `json:"tax_region"`
	TaxExempt       bool            `json:"tax_exempt"`
	ShippingMethod  string          `json:"shipping_method"`
	TotalWeight     float64         `json:"total_weight"`
	ShippingAddress *models.Address `json:"shipping_address"`
	BillingAddress  *models.Address `json:"billing_address"`
	OrderNotes      string          `json:"order_notes"`
}

// CheckoutService converts carts into orders: it validates the request,
// reserves stock per line, and builds the priced pending order. A mid-flight
// reservation failure releases everything reserved so far and removes the
// partially created order, so a failed checkout leaves no trace.
type CheckoutService struct {
	cartRepo     repositories.CartRepository
	orderRepo    repositories.OrderRepository
	stockManager *StockManager
	pricing      *PricingCalculator
	ruleCheck    *BusinessRuleValidator
	mqClient     *rabbitmq.Client
}

// NewCheckoutService creates a new CheckoutService. mqClient may be nil.
func NewCheckoutService(
	cartRepo repositories.CartRepository,
	orderRepo repositories.OrderRepository,
	stockManager *StockManager,
	pricing *PricingCalculator,
	ruleCheck *BusinessRuleValidator,
	mqClient *rabbitmq.Client,
) *CheckoutService {
	return &CheckoutService{
		cartRepo:     cartRepo,
		orderRepo:    orderRepo,
		stockManager: stockManager,
		pricing:      pricing,
		ruleCheck:    ruleCheck,
		mqClient:     mqClient,
	}
}

// ConvertCartToOrder turns the customer's cart into a pending order with
// stock reserved for every line, then clears the cart. Item unit prices are
// frozen from the cart at conversion time.
func (s *CheckoutService) ConvertCartToOrder(cartID, customerID string, opts CheckoutOptions) (*models.Order, error) {
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, err
	}
	if cart.CustomerID != customerID {
		return nil, fmt.Errorf("cart %s does not belong to customer %s", cartID, customerID)
	}
	if len(cart.Items) == 0 {
		return nil, fmt.Errorf("cannot checkout an empty cart")
	}

	if err := s.validateCheckout(cart, customerID); err != nil {
		return nil, err
	}

	// All-or-nothing availability gate before any state changes.
	requests := make([]StockRequest, 0, len(cart.Items))
	for _, item := range cart.Items {
		requests = append(requests, StockRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	bulkCheck := s.stockManager.CheckMultipleProductsStock(requests)
	if !bulkCheck.AllAvailable {
		var shortfalls []string
		for _, unavailable := range bulkCheck.UnavailableItems {
			name := unavailable.ProductName
			if name == "" {
				name = unavailable.ProductID
			}
			shortfalls = append(shortfalls, fmt.Sprintf("%s: requested %d, available %d",
				name, unavailable.RequestedQuantity, unavailable.CurrentStock))
		}
		return nil, fmt.Errorf("insufficient stock: %s", strings.Join(shortfalls, "; "))
	}

	order := s.buildOrder(cart, customerID, opts)
	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Reserve per line. On failure, release what this checkout already holds
	// and remove the order so nothing dangles.
	var reserved []models.OrderItem
	for _, item := range order.Items {
		result, reserveErr := s.stockManager.ReserveStock(item.ProductID, item.Quantity, order.ID)
		if reserveErr != nil || !result.Success {
			message := "reservation failed"
			if reserveErr != nil {
				message = reserveErr.Error()
			} else {
				message = result.Message
			}
			s.compensate(order, reserved)
			return nil, fmt.Errorf("checkout failed for product %s: %s", item.ProductID, message)
		}
		reserved = append(reserved, item)
	}

	if err := s.priceOrder(order, opts); err != nil {
		s.compensate(order, reserved)
		return nil, err
	}

	if err := s.cartRepo.ClearItems(cart.ID); err != nil {
		log.Printf("WARNING: failed to clear cart %s after checkout of order %s: %v", cart.ID, order.ID, err)
	}

	if s.mqClient != nil {
		event := map[string]interface{}{
			"orderID":    order.ID,
			"customerID": order.CustomerID,
			"total":      order.TotalAmount,
			"itemCount":  order.ItemCount(),
		}
		if err := s.mqClient.PublishOrderEvent("order.created", event); err != nil {
			log.Printf("Warning: failed to publish order.created for order %s: %v", order.ID, err)
		}
	}

	log.Printf("checkout complete: cart=%s order=%s customer=%s total=$%s", cart.ID, order.ID, customerID, order.TotalAmount.StringFixed(2))
	return order, nil
}

// validateCheckout runs the business rule checks over the cart.
func (s *CheckoutService) validateCheckout(cart *models.Cart, customerID string) error {
	preliminary := decimal.Zero
	for _, item := range cart.Items {
		preliminary = preliminary.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	limits, err := s.ruleCheck.ValidateCustomerOrderLimits(customerID, preliminary)
	if err != nil {
		return err
	}
	limits.Merge(s.ruleCheck.ValidateOrderItems(cart.Items))
	limits.Merge(s.ruleCheck.ValidateInventoryConstraints(cart.Items))

	for _, warning := range limits.Warnings {
		log.Printf("checkout warning for customer %s: %s", customerID, warning)
	}
	if !limits.Valid {
		return fmt.Errorf("checkout validation failed: %s", strings.Join(limits.Errors, "; "))
	}
	return nil
}

// buildOrder assembles the pending order from the cart, freezing unit prices.
func (s *CheckoutService) buildOrder(cart *models.Cart, customerID string, opts CheckoutOptions) *models.Order {
	order := &models.Order{
		CustomerID:      customerID,
		CartID:          cart.ID,
		Status:          models.StatusPending,
		DiscountCode:    opts.DiscountCode,
		TaxRegion:       opts.TaxRegion,
		TaxExempt:       opts.TaxExempt,
		ShippingMethod:  opts.ShippingMethod,
		TotalWeight:     opts.TotalWeight,
		ShippingAddress: opts.ShippingAddress,
		BillingAddress:  opts.BillingAddress,
		OrderNotes:      opts.OrderNotes,
	}
	if order.TaxRegion == "" {
		order.TaxRegion = "DEFAULT"
	}
	if order.ShippingMethod == "" {
		order.ShippingMethod = "standard"
	}
	for _, item := range cart.Items {
		orderItem := models.OrderItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		orderItem.CalculateSubtotal()
		order.Items = append(order.Items, orderItem)
	}
	return order
}

// priceOrder computes the full pricing breakdown and persists the snapshot.
func (s *CheckoutService) priceOrder(order *models.Order, opts CheckoutOptions) error {
	items := make([]LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItem{Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}
	breakdown, err := s.pricing.CalculateOrderTotal(items, PricingOptions{
		Discount:        DiscountInput{Code: opts.DiscountCode},
		TaxRegion:       order.TaxRegion,
		TaxExempt:       order.TaxExempt,
		ShippingMethod:  order.ShippingMethod,
		TotalWeight:     order.TotalWeight,
		ShippingAddress: order.ShippingAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to price order %s: %w", order.ID, err)
	}

	order.Subtotal = breakdown.Subtotal
	order.DiscountAmount = breakdown.DiscountApplied
	order.TaxAmount = breakdown.TaxAmount
	order.ShippingCost = breakdown.ShippingCost
	order.TotalAmount = breakdown.FinalTotal

	if err := s.orderRepo.Update(order); err != nil {
		return fmt.Errorf("failed to persist order pricing: %w", err)
	}
	return nil
}

// compensate undoes a partial checkout: releases the reserved lines and
// deletes the order so no pending order without stock is left behind.
func (s *CheckoutService) compensate(order *models.Order, reserved []models.OrderItem) {
	for _, item := range reserved {
		if _, err := s.stockManager.ReleaseStock(item.ProductID, item.Quantity, order.ID); err != nil {
			log.Printf("WARNING: failed to release %d units of product %s while rolling back order %s: %v",
				item.Quantity, item.ProductID, order.ID, err)
		}
	}
	if err := s.orderRepo.Delete(order.ID); err != nil {
		log.Printf("WARNING: failed to delete order %s during checkout rollback: %v", order.ID, err)
	}
}
