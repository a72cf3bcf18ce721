package services

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// Ordering limits enforced per customer and per order.
const (
	MaxOrderItems              = 100
	MaxDailyOrders             = 10
	MaxMonthlyOrderValue       = 50000
	HighValueOrderThreshold    = 1000
	BulkOrderQuantityThreshold = 50
)

// Caps on bulk operations, per operation type.
var bulkOperationLimits = map[string]int{
	"update": 100,
	"delete": 50,
	"create": 200,
}

// highValueReviewThreshold is the order total above which the workflow adds a
// manual review warning.
var highValueReviewThreshold = decimal.NewFromInt(10000)

// ValidationResult collects errors (which make the subject invalid) and
// warnings (advisory only).
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

func (r *ValidationResult) addError(msg string) {
	r.Valid = false
	r.Errors = append(r.Errors, msg)
}

func (r *ValidationResult) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Merge folds another result into this one.
func (r *ValidationResult) Merge(other ValidationResult) {
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
}

// BusinessRuleValidator checks orders and bulk operations against the
// customer and inventory business rules.
type BusinessRuleValidator struct {
	validate    *validator.Validate
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
}

// NewBusinessRuleValidator creates a new BusinessRuleValidator.
func NewBusinessRuleValidator(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository) *BusinessRuleValidator {
	return &BusinessRuleValidator{
		validate:    validator.New(),
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// ValidateCustomerOrderLimits checks the daily order count (cancelled orders
// do not count) and the trailing-30-day order value against the per-customer
// caps, warning at 80% of either limit.
func (v *BusinessRuleValidator) ValidateCustomerOrderLimits(customerID string, orderTotal decimal.Decimal) (ValidationResult, error) {
	result := ValidationResult{Valid: true}
	now := time.Now()

	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dailyCount, err := v.orderRepo.CountCustomerOrdersSince(customerID, dayStart, []models.OrderStatus{models.StatusCancelled})
	if err != nil {
		return result, fmt.Errorf("failed to count customer orders: %w", err)
	}
	if dailyCount >= MaxDailyOrders {
		result.addError(fmt.Sprintf("daily order limit reached (%d orders per day)", MaxDailyOrders))
	} else if float64(dailyCount+1) >= float64(MaxDailyOrders)*0.8 {
		result.addWarning(fmt.Sprintf("approaching daily order limit: %d of %d orders placed today", dailyCount, MaxDailyOrders))
	}

	monthStart := now.AddDate(0, 0, -30)
	monthlyValue, err := v.orderRepo.SumCustomerOrdersSince(customerID, monthStart, []models.OrderStatus{
		models.StatusConfirmed, models.StatusProcessing, models.StatusShipped, models.StatusDelivered,
	})
	if err != nil {
		return result, fmt.Errorf("failed to sum customer orders: %w", err)
	}

	maxMonthly := decimal.NewFromInt(MaxMonthlyOrderValue)
	projected := monthlyValue.Add(orderTotal)
	if projected.GreaterThan(maxMonthly) {
		result.addError(fmt.Sprintf("monthly order value limit exceeded: $%s of $%s", projected.StringFixed(2), maxMonthly.StringFixed(2)))
	} else if projected.GreaterThanOrEqual(maxMonthly.Mul(decimal.NewFromFloat(0.8))) {
		result.addWarning(fmt.Sprintf("approaching monthly order value limit: $%s of $%s", projected.StringFixed(2), maxMonthly.StringFixed(2)))
	}

	if orderTotal.GreaterThan(decimal.NewFromInt(HighValueOrderThreshold)) {
		result.addWarning(fmt.Sprintf("high-value order ($%s) may require additional verification", orderTotal.StringFixed(2)))
	}

	return result, nil
}

// ValidateOrderItems checks item-level constraints: at least one item, the
// item count cap, positive quantities and non-negative unit prices.
func (v *BusinessRuleValidator) ValidateOrderItems(items []models.CartItem) ValidationResult {
	result := ValidationResult{Valid: true}

	if len(items) == 0 {
		result.addError("order must contain at least one item")
		return result
	}
	if len(items) > MaxOrderItems {
		result.addError(fmt.Sprintf("order exceeds maximum of %d items", MaxOrderItems))
	}

	for _, item := range items {
		if item.Quantity <= 0 {
			result.addError(fmt.Sprintf("invalid quantity %d for product %s", item.Quantity, item.ProductID))
		}
		if item.UnitPrice.IsNegative() {
			result.addError(fmt.Sprintf("negative unit price for product %s", item.ProductID))
		}
		if item.Quantity >= BulkOrderQuantityThreshold {
			result.addWarning(fmt.Sprintf("bulk quantity (%d) for product %s may require approval", item.Quantity, item.ProductID))
		}
	}
	return result
}

// ValidateInventoryConstraints verifies each requested product exists, is
// available for sale, and has sufficient stock. Fulfilling a request that
// would drop stock below the product's minimum level yields a warning.
func (v *BusinessRuleValidator) ValidateInventoryConstraints(items []models.CartItem) ValidationResult {
	result := ValidationResult{Valid: true}

	for _, item := range items {
		product, err := v.productRepo.GetByID(item.ProductID)
		if err != nil {
			result.addError(fmt.Sprintf("product %s not found", item.ProductID))
			continue
		}
		if !product.IsAvailable {
			result.addError(fmt.Sprintf("product %s is not available for purchase", product.Name))
			continue
		}
		if product.StockQuantity < item.Quantity {
			result.addError(fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
				product.Name, item.Quantity, product.StockQuantity))
			continue
		}
		if product.StockQuantity-item.Quantity < product.MinStockLevel {
			result.addWarning(fmt.Sprintf("order would drop %s below its minimum stock level (%d)",
				product.Name, product.MinStockLevel))
		}
	}
	return result
}

// ValidateBulkOperation enforces the per-operation batch size caps, warning
// at 80% of the cap. Unknown operation types are rejected.
func (v *BusinessRuleValidator) ValidateBulkOperation(operationType string, itemCount int) ValidationResult {
	result := ValidationResult{Valid: true}

	limit, ok := bulkOperationLimits[operationType]
	if !ok {
		result.addError(fmt.Sprintf("unknown bulk operation type: %s", operationType))
		return result
	}
	if itemCount <= 0 {
		result.addError("bulk operation must include at least one item")
		return result
	}
	if itemCount > limit {
		result.addError(fmt.Sprintf("bulk %s limited to %d items, got %d", operationType, limit, itemCount))
	} else if float64(itemCount) >= float64(limit)*0.8 {
		result.addWarning(fmt.Sprintf("bulk %s batch of %d is close to the %d item limit", operationType, itemCount, limit))
	}
	return result
}

// ValidateProductData runs struct tag validation over a product.
func (v *BusinessRuleValidator) ValidateProductData(product *models.Product) error {
	if err := v.validate.Struct(product); err != nil {
		return fmt.Errorf("product validation failed: %w", err)
	}
	return nil
}
