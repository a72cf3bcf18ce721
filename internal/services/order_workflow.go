package services

import (
	"errors"
	"fmt"
	"log"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/pkg/rabbitmq"
)

// validTransitions is the closed adjacency map over order statuses.
// cancelled and refunded are terminal; failed may be retried back to pending.
var validTransitions = map[models.OrderStatus][]models.OrderStatus{
	models.StatusPending:    {models.StatusConfirmed, models.StatusCancelled, models.StatusFailed},
	models.StatusConfirmed:  {models.StatusProcessing, models.StatusCancelled},
	models.StatusProcessing: {models.StatusShipped, models.StatusCancelled},
	models.StatusShipped:    {models.StatusDelivered, models.StatusCancelled},
	models.StatusDelivered:  {models.StatusRefunded},
	models.StatusCancelled:  {},
	models.StatusRefunded:   {},
	models.StatusFailed:     {models.StatusPending},
}

// TransitionResult reports the outcome of one status transition attempt.
// A rejected transition is not an error: the caller gets the current status
// and the valid alternatives to react to.
type TransitionResult struct {
	Success          bool                 `json:"success"`
	Message          string               `json:"message"`
	OrderID          string               `json:"order_id"`
	PreviousStatus   models.OrderStatus   `json:"previous_status,omitempty"`
	CurrentStatus    models.OrderStatus   `json:"current_status"`
	ValidTransitions []models.OrderStatus `json:"valid_transitions,omitempty"`
	ActionsPerformed []string             `json:"actions_performed,omitempty"`
}

// BulkTransitionEntry is the per-order outcome within a bulk transition.
type BulkTransitionEntry struct {
	OrderID string            `json:"order_id"`
	Result  *TransitionResult `json:"result,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// BulkTransitionResult aggregates a bulk transition run.
type BulkTransitionResult struct {
	TotalOrders           int                   `json:"total_orders"`
	SuccessfulTransitions int                   `json:"successful_transitions"`
	FailedTransitions     int                   `json:"failed_transitions"`
	Results               []BulkTransitionEntry `json:"results"`
}

// OrderWorkflowManager drives the order status state machine: it validates
// transitions, runs stock reservation/release as transition side effects,
// and orchestrates post-transition actions (pricing recompute, notification).
type OrderWorkflowManager struct {
	orderRepo    repositories.OrderRepository
	stockManager *StockManager
	pricing      *PricingCalculator
	mqClient     *rabbitmq.Client
}

// NewOrderWorkflowManager creates a new OrderWorkflowManager. mqClient may be
// nil, in which case notifications are skipped.
func NewOrderWorkflowManager(orderRepo repositories.OrderRepository, stockManager *StockManager, pricing *PricingCalculator, mqClient *rabbitmq.Client) *OrderWorkflowManager {
	return &OrderWorkflowManager{
		orderRepo:    orderRepo,
		stockManager: stockManager,
		pricing:      pricing,
		mqClient:     mqClient,
	}
}

// CanTransitionTo reports whether from -> to is an allowed transition.
func (w *OrderWorkflowManager) CanTransitionTo(from, to models.OrderStatus) bool {
	for _, allowed := range validTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// GetValidTransitions lists the allowed target statuses from the given status.
func (w *OrderWorkflowManager) GetValidTransitions(from models.OrderStatus) []models.OrderStatus {
	allowed := validTransitions[from]
	result := make([]models.OrderStatus, len(allowed))
	copy(result, allowed)
	return result
}

// TransitionOrderStatus moves an order to a new status with validation and
// side effects. A missing order is an error; an invalid transition is a
// structured rejection carrying the valid alternatives. Every attempt is
// logged for audit, successful or not.
func (w *OrderWorkflowManager) TransitionOrderStatus(orderID string, newStatus models.OrderStatus, reason, userID string) (*TransitionResult, error) {
	order, err := w.orderRepo.GetByID(orderID)
	if err != nil {
		w.logAttempt(orderID, "", newStatus, reason, userID, false, "order not found")
		return nil, err
	}

	currentStatus := order.Status

	if !newStatus.IsValid() {
		w.logAttempt(orderID, currentStatus, newStatus, reason, userID, false, "unknown status")
		return &TransitionResult{
			Success:          false,
			Message:          fmt.Sprintf("invalid order status: %s", newStatus),
			OrderID:          orderID,
			CurrentStatus:    currentStatus,
			ValidTransitions: w.GetValidTransitions(currentStatus),
		}, nil
	}

	if !w.CanTransitionTo(currentStatus, newStatus) {
		w.logAttempt(orderID, currentStatus, newStatus, reason, userID, false, "invalid transition")
		return &TransitionResult{
			Success:          false,
			Message:          fmt.Sprintf("invalid status transition from %s to %s", currentStatus, newStatus),
			OrderID:          orderID,
			CurrentStatus:    currentStatus,
			ValidTransitions: w.GetValidTransitions(currentStatus),
		}, nil
	}

	actions, preErr := w.preTransitionActions(order, currentStatus, newStatus)
	if preErr != nil {
		w.logAttempt(orderID, currentStatus, newStatus, reason, userID, false, preErr.Error())
		return &TransitionResult{
			Success:          false,
			Message:          preErr.Error(),
			OrderID:          orderID,
			CurrentStatus:    currentStatus,
			ActionsPerformed: actions,
		}, nil
	}

	if err := w.orderRepo.UpdateStatus(orderID, newStatus); err != nil {
		w.logAttempt(orderID, currentStatus, newStatus, reason, userID, false, "commit failed")
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	order.Status = newStatus

	// Post-transition actions never roll the committed status back.
	actions = append(actions, w.postTransitionActions(order, newStatus)...)

	w.logAttempt(orderID, currentStatus, newStatus, reason, userID, true, "")

	return &TransitionResult{
		Success:          true,
		Message:          fmt.Sprintf("order status changed from %s to %s", currentStatus, newStatus),
		OrderID:          orderID,
		PreviousStatus:   currentStatus,
		CurrentStatus:    newStatus,
		ActionsPerformed: actions,
	}, nil
}

// preTransitionActions runs the side effects that must succeed before the
// status commits. A returned error aborts the transition with no status change.
func (w *OrderWorkflowManager) preTransitionActions(order *models.Order, from, to models.OrderStatus) ([]string, error) {
	var actions []string

	switch {
	case from == models.StatusPending && to == models.StatusConfirmed:
		// Reserve stock for every line. If one line fails, the lines reserved
		// in this attempt are released so the abort leaves nothing held.
		var reserved []models.OrderItem
		for _, item := range order.Items {
			result, err := w.stockManager.ReserveStock(item.ProductID, item.Quantity, order.ID)
			if err != nil || !result.Success {
				message := "reservation failed"
				if err != nil {
					message = err.Error()
				} else {
					message = result.Message
				}
				for _, held := range reserved {
					if _, relErr := w.stockManager.ReleaseStock(held.ProductID, held.Quantity, order.ID); relErr != nil {
						log.Printf("WARNING: failed to release %d units of product %s while aborting confirmation of order %s: %v",
							held.Quantity, held.ProductID, order.ID, relErr)
					}
				}
				return actions, fmt.Errorf("cannot confirm order: %s", message)
			}
			reserved = append(reserved, item)
			actions = append(actions, fmt.Sprintf("reserved %d units of product %s", item.Quantity, item.ProductID))
		}

	case (from == models.StatusConfirmed || from == models.StatusProcessing) && to == models.StatusCancelled:
		// Release is best-effort: failing to cancel an unwanted order is worse
		// than a bookkeeping discrepancy the movement log can reconcile.
		for _, item := range order.Items {
			result, err := w.stockManager.ReleaseStock(item.ProductID, item.Quantity, order.ID)
			if err != nil || !result.Success {
				log.Printf("WARNING: failed to release %d units of product %s while cancelling order %s", item.Quantity, item.ProductID, order.ID)
				continue
			}
			actions = append(actions, fmt.Sprintf("released %d units of product %s", item.Quantity, item.ProductID))
		}
	}

	return actions, nil
}

// postTransitionActions runs after the status commit. Failures are logged
// and reported in the action list, never rolled back.
func (w *OrderWorkflowManager) postTransitionActions(order *models.Order, to models.OrderStatus) []string {
	var actions []string

	if to == models.StatusConfirmed {
		if err := w.RecalculateOrderPricing(order); err != nil {
			log.Printf("WARNING: failed to update pricing for confirmed order %s: %v", order.ID, err)
			actions = append(actions, "pricing update failed")
		} else {
			actions = append(actions, fmt.Sprintf("updated order pricing: $%s", order.TotalAmount))
		}
	}

	switch to {
	case models.StatusConfirmed, models.StatusShipped, models.StatusDelivered:
		w.notify(order, to)
		actions = append(actions, fmt.Sprintf("notification sent for status: %s", to))
	}

	return actions
}

// RecalculateOrderPricing reruns the pricing pipeline over the order's items
// and persists the refreshed snapshot.
func (w *OrderWorkflowManager) RecalculateOrderPricing(order *models.Order) error {
	if len(order.Items) == 0 {
		return fmt.Errorf("cannot calculate pricing for order %s without items", order.ID)
	}

	items := make([]LineItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, LineItem{Quantity: item.Quantity, UnitPrice: item.UnitPrice})
	}

	breakdown, err := w.pricing.CalculateOrderTotal(items, PricingOptions{
		Discount:        DiscountInput{Code: order.DiscountCode},
		TaxRegion:       order.TaxRegion,
		TaxExempt:       order.TaxExempt,
		ShippingMethod:  order.ShippingMethod,
		TotalWeight:     order.TotalWeight,
		ShippingAddress: order.ShippingAddress,
	})
	if err != nil {
		return fmt.Errorf("failed to calculate order total: %w", err)
	}

	order.Subtotal = breakdown.Subtotal
	order.DiscountAmount = breakdown.DiscountApplied
	order.TaxAmount = breakdown.TaxAmount
	order.ShippingCost = breakdown.ShippingCost
	order.TotalAmount = breakdown.FinalTotal

	if err := w.orderRepo.Update(order); err != nil {
		return fmt.Errorf("failed to persist order pricing: %w", err)
	}
	return nil
}

// notify publishes an order lifecycle event. A nil client or a publish
// failure only logs; notifications are not part of the consistency model.
func (w *OrderWorkflowManager) notify(order *models.Order, status models.OrderStatus) {
	if w.mqClient == nil {
		log.Printf("order %s reached status %s (notifications disabled)", order.ID, status)
		return
	}
	event := map[string]interface{}{
		"orderID":    order.ID,
		"customerID": order.CustomerID,
		"status":     string(status),
		"total":      order.TotalAmount,
	}
	if err := w.mqClient.PublishOrderEvent("order."+string(status), event); err != nil {
		log.Printf("Warning: failed to publish %s event for order %s: %v", status, order.ID, err)
	}
}

// BulkTransitionOrders applies the single-order transition to each order
// independently; one order's failure never blocks the others.
func (w *OrderWorkflowManager) BulkTransitionOrders(orderIDs []string, newStatus models.OrderStatus, reason, userID string) *BulkTransitionResult {
	bulk := &BulkTransitionResult{TotalOrders: len(orderIDs)}

	for _, orderID := range orderIDs {
		entry := BulkTransitionEntry{OrderID: orderID}
		result, err := w.TransitionOrderStatus(orderID, newStatus, reason, userID)
		if err != nil {
			entry.Error = err.Error()
			bulk.FailedTransitions++
		} else {
			entry.Result = result
			if result.Success {
				bulk.SuccessfulTransitions++
			} else {
				bulk.FailedTransitions++
			}
		}
		bulk.Results = append(bulk.Results, entry)
	}
	return bulk
}

// GetOrdersByStatus returns orders in the given status. limit <= 0 means all.
func (w *OrderWorkflowManager) GetOrdersByStatus(status models.OrderStatus, limit int) ([]models.Order, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid order status: %s", status)
	}
	return w.orderRepo.GetByStatus(status, limit)
}

// GetOrderStatusSummary returns the order count per status, including zeroes.
func (w *OrderWorkflowManager) GetOrderStatusSummary() (map[models.OrderStatus]int64, error) {
	return w.orderRepo.CountByStatus()
}

// ValidateOrderBusinessRules checks an order against the ordering business
// rules, independent of the state machine. For orders whose status implies
// held stock it re-verifies that current stock still covers every line,
// surfacing discrepancies as errors.
func (w *OrderWorkflowManager) ValidateOrderBusinessRules(order *models.Order) ValidationResult {
	var result ValidationResult
	result.Valid = true

	if len(order.Items) == 0 {
		result.addError("order must have at least one item")
	}
	if !order.TotalAmount.IsPositive() {
		result.addError("order total must be greater than zero")
	}
	if order.TotalAmount.GreaterThan(highValueReviewThreshold) {
		result.addWarning("high-value order requires additional verification")
	}

	if order.Status == models.StatusConfirmed || order.Status == models.StatusProcessing {
		for _, item := range order.Items {
			check := w.stockManager.CheckStockAvailability(item.ProductID, item.Quantity)
			if !check.Available {
				result.addError(fmt.Sprintf("insufficient stock for product %s: requested %d, available %d",
					item.ProductID, item.Quantity, check.CurrentStock))
			}
		}
	}
	return result
}

// IsOrderNotFound reports whether err indicates a missing order.
func IsOrderNotFound(err error) bool {
	return errors.Is(err, repositories.ErrOrderNotFound)
}

// logAttempt writes the audit line for one transition attempt.
func (w *OrderWorkflowManager) logAttempt(orderID string, from, to models.OrderStatus, reason, userID string, success bool, detail string) {
	outcome := "ok"
	if !success {
		outcome = "rejected: " + detail
	}
	log.Printf("order status transition: order=%s from=%s to=%s reason=%q user=%q outcome=%s",
		orderID, from, to, reason, userID, outcome)
}
