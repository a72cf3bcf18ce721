package services

import (
	"errors"
	"fmt"
	"log"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/shopspring/decimal"
)

// Stock level classifications.
const (
	StockLevelOutOfStock = "out_of_stock"
	StockLevelCritical   = "critical"
	StockLevelLow        = "low"
	StockLevelNormal     = "normal"
)

// StockConfig holds the stock-level thresholds. They are configuration,
// not per-product attributes.
type StockConfig struct {
	LowStockThreshold      int
	CriticalStockThreshold int
}

// DefaultStockConfig returns the standard thresholds.
func DefaultStockConfig() StockConfig {
	return StockConfig{
		LowStockThreshold:      10,
		CriticalStockThreshold: 5,
	}
}

// StockRequest names a product and a requested quantity.
type StockRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// StockCheckResult reports availability for one product without mutating anything.
type StockCheckResult struct {
	ProductID                 string          `json:"product_id"`
	ProductName               string          `json:"product_name,omitempty"`
	Available                 bool            `json:"available"`
	Reason                    string          `json:"reason"`
	CurrentStock              int             `json:"current_stock"`
	RequestedQuantity         int             `json:"requested_quantity"`
	RemainingAfterFulfillment int             `json:"remaining_after_fulfillment"`
	StockLevel                string          `json:"stock_level"`
	ItemValue                 decimal.Decimal `json:"item_value"`
}

// BulkStockCheckResult aggregates per-item checks for a whole order.
// TotalOrderValue counts available items only.
type BulkStockCheckResult struct {
	AllAvailable     bool               `json:"all_available"`
	TotalOrderValue  decimal.Decimal    `json:"total_order_value"`
	Items            []StockCheckResult `json:"items"`
	UnavailableItems []StockCheckResult `json:"unavailable_items"`
}

// StockOperationResult reports the outcome of a stock mutation.
type StockOperationResult struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	PreviousStock  int    `json:"previous_stock"`
	CurrentStock   int    `json:"current_stock"`
	QuantityChange int    `json:"quantity_change,omitempty"`
	StockLevel     string `json:"stock_level,omitempty"`
}

// StockReportEntry is one row of a low-stock or out-of-stock report.
type StockReportEntry struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	CurrentStock int             `json:"current_stock"`
	StockLevel   string          `json:"stock_level"`
	Price        decimal.Decimal `json:"price"`
	CategoryID   string          `json:"category_id,omitempty"`
}

// StockManager owns all stock-quantity reads and writes. No other component
// may change Product.StockQuantity; going through the manager is what keeps
// the no-negative-stock invariant and the movement log complete.
type StockManager struct {
	productRepo  repositories.ProductRepository
	movementRepo repositories.StockMovementRepository
	cfg          StockConfig
}

// NewStockManager creates a new StockManager.
func NewStockManager(productRepo repositories.ProductRepository, movementRepo repositories.StockMovementRepository, cfg StockConfig) *StockManager {
	return &StockManager{
		productRepo:  productRepo,
		movementRepo: movementRepo,
		cfg:          cfg,
	}
}

// CheckStockAvailability reports whether the requested quantity can be
// fulfilled. It never mutates and never errors: a missing product is
// reported as unavailable.
func (m *StockManager) CheckStockAvailability(productID string, requestedQuantity int) StockCheckResult {
	product, err := m.productRepo.GetByID(productID)
	if err != nil {
		return StockCheckResult{
			ProductID:         productID,
			Available:         false,
			Reason:            "Product not found",
			CurrentStock:      0,
			RequestedQuantity: requestedQuantity,
			StockLevel:        StockLevelOutOfStock,
		}
	}

	currentStock := product.StockQuantity
	canFulfill := currentStock >= requestedQuantity

	result := StockCheckResult{
		ProductID:         productID,
		ProductName:       product.Name,
		Available:         canFulfill,
		Reason:            "Sufficient stock",
		CurrentStock:      currentStock,
		RequestedQuantity: requestedQuantity,
		StockLevel:        m.stockLevel(currentStock),
	}
	if canFulfill {
		result.RemainingAfterFulfillment = currentStock - requestedQuantity
	} else {
		result.Reason = "Insufficient stock"
		result.RemainingAfterFulfillment = currentStock
	}
	return result
}

// CheckMultipleProductsStock runs the per-item check for every request and
// aggregates the outcome.
func (m *StockManager) CheckMultipleProductsStock(requests []StockRequest) BulkStockCheckResult {
	result := BulkStockCheckResult{
		AllAvailable:    true,
		TotalOrderValue: decimal.Zero,
	}

	for _, req := range requests {
		check := m.CheckStockAvailability(req.ProductID, req.Quantity)

		if check.Available {
			if product, err := m.productRepo.GetByID(req.ProductID); err == nil {
				check.ItemValue = product.Price.Mul(decimal.NewFromInt(int64(req.Quantity)))
				result.TotalOrderValue = result.TotalOrderValue.Add(check.ItemValue)
			}
		} else {
			result.AllAvailable = false
			result.UnavailableItems = append(result.UnavailableItems, check)
		}
		result.Items = append(result.Items, check)
	}
	return result
}

// ReserveStock decrements the product's stock by quantity in one guarded
// statement and records the movement. When stock does not cover the request
// the reservation is rejected and nothing is mutated.
func (m *StockManager) ReserveStock(productID string, quantity int, orderID string) (*StockOperationResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("reserve quantity must be positive, got %d", quantity)
	}

	product, err := m.productRepo.DecrementStock(productID, quantity)
	if err != nil {
		if errors.Is(err, repositories.ErrInsufficientStock) {
			check := m.CheckStockAvailability(productID, quantity)
			return &StockOperationResult{
				Success:      false,
				Message:      fmt.Sprintf("cannot reserve %d units: insufficient stock (available: %d)", quantity, check.CurrentStock),
				CurrentStock: check.CurrentStock,
				StockLevel:   check.StockLevel,
			}, nil
		}
		if errors.Is(err, repositories.ErrProductNotFound) {
			return &StockOperationResult{
				Success: false,
				Message: fmt.Sprintf("cannot reserve %d units: product not found", quantity),
			}, nil
		}
		return nil, fmt.Errorf("failed to reserve stock for product %s: %w", productID, err)
	}

	previousStock := product.StockQuantity + quantity
	notes := "Stock reserved"
	if orderID != "" {
		notes = fmt.Sprintf("Stock reserved for order %s", orderID)
	}
	m.logMovement(productID, models.MovementReserved, -quantity, previousStock, product.StockQuantity, orderID, notes)

	return &StockOperationResult{
		Success:       true,
		Message:       fmt.Sprintf("successfully reserved %d units", quantity),
		PreviousStock: previousStock,
		CurrentStock:  product.StockQuantity,
		StockLevel:    m.stockLevel(product.StockQuantity),
	}, nil
}

// ReleaseStock increments the product's stock by quantity and records the
// movement. It serves both deliberate cancellation and compensating release
// after a partially-failed reservation sequence.
func (m *StockManager) ReleaseStock(productID string, quantity int, orderID string) (*StockOperationResult, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("release quantity must be positive, got %d", quantity)
	}

	product, err := m.productRepo.IncrementStock(productID, quantity)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return &StockOperationResult{
				Success: false,
				Message: fmt.Sprintf("cannot release %d units: product not found", quantity),
			}, nil
		}
		return nil, fmt.Errorf("failed to release stock for product %s: %w", productID, err)
	}

	previousStock := product.StockQuantity - quantity
	notes := "Stock released"
	if orderID != "" {
		notes = fmt.Sprintf("Stock released from order %s", orderID)
	}
	m.logMovement(productID, models.MovementReleased, quantity, previousStock, product.StockQuantity, orderID, notes)

	return &StockOperationResult{
		Success:       true,
		Message:       fmt.Sprintf("successfully released %d units", quantity),
		PreviousStock: previousStock,
		CurrentStock:  product.StockQuantity,
		StockLevel:    m.stockLevel(product.StockQuantity),
	}, nil
}

// UpdateStockQuantity overwrites the product's stock with an absolute
// quantity and logs the signed delta. Negative targets are rejected.
func (m *StockManager) UpdateStockQuantity(productID string, newQuantity int, reason string) (*StockOperationResult, error) {
	if newQuantity < 0 {
		return &StockOperationResult{
			Success: false,
			Message: "stock quantity cannot be negative",
		}, nil
	}

	current, err := m.productRepo.GetByID(productID)
	if err != nil {
		if errors.Is(err, repositories.ErrProductNotFound) {
			return &StockOperationResult{
				Success: false,
				Message: "product not found",
			}, nil
		}
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}

	previousStock := current.StockQuantity
	if _, err := m.productRepo.SetStock(productID, newQuantity); err != nil {
		return nil, fmt.Errorf("failed to set stock for product %s: %w", productID, err)
	}

	if reason == "" {
		reason = "Manual update"
	}
	change := newQuantity - previousStock
	m.logMovement(productID, models.MovementAdjustment, change, previousStock, newQuantity, "", reason)

	return &StockOperationResult{
		Success:        true,
		Message:        fmt.Sprintf("stock updated from %d to %d", previousStock, newQuantity),
		PreviousStock:  previousStock,
		CurrentStock:   newQuantity,
		QuantityChange: change,
		StockLevel:     m.stockLevel(newQuantity),
	}, nil
}

// GetLowStockProducts reports products with positive stock at or below the
// threshold. A non-positive threshold uses the configured default.
func (m *StockManager) GetLowStockProducts(threshold int) ([]StockReportEntry, error) {
	if threshold <= 0 {
		threshold = m.cfg.LowStockThreshold
	}
	products, err := m.productRepo.FindLowStock(threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to get low stock products: %w", err)
	}
	return m.report(products), nil
}

// GetOutOfStockProducts reports products with no remaining stock.
func (m *StockManager) GetOutOfStockProducts() ([]StockReportEntry, error) {
	products, err := m.productRepo.FindOutOfStock()
	if err != nil {
		return nil, fmt.Errorf("failed to get out of stock products: %w", err)
	}
	return m.report(products), nil
}

// GetMovementHistory returns the audit trail for a product.
func (m *StockManager) GetMovementHistory(productID string) ([]models.StockMovement, error) {
	return m.movementRepo.GetByProductID(productID)
}

func (m *StockManager) report(products []models.Product) []StockReportEntry {
	entries := make([]StockReportEntry, 0, len(products))
	for _, p := range products {
		entries = append(entries, StockReportEntry{
			ProductID:    p.ID,
			ProductName:  p.Name,
			CurrentStock: p.StockQuantity,
			StockLevel:   m.stockLevel(p.StockQuantity),
			Price:        p.Price,
			CategoryID:   p.CategoryID,
		})
	}
	return entries
}

func (m *StockManager) stockLevel(quantity int) string {
	switch {
	case quantity <= 0:
		return StockLevelOutOfStock
	case quantity <= m.cfg.CriticalStockThreshold:
		return StockLevelCritical
	case quantity <= m.cfg.LowStockThreshold:
		return StockLevelLow
	default:
		return StockLevelNormal
	}
}

// logMovement records the audit row for a stock mutation. A failed write
// never reverts the stock change itself; it is logged loudly so the
// movement can be reconciled by hand.
func (m *StockManager) logMovement(productID, movementType string, quantityChange, previousStock, newStock int, orderID, notes string) {
	movement := &models.StockMovement{
		ProductID:      productID,
		MovementType:   movementType,
		QuantityChange: quantityChange,
		PreviousStock:  previousStock,
		NewStock:       newStock,
		OrderID:        orderID,
		Notes:          notes,
	}
	if err := m.movementRepo.Create(movement); err != nil {
		log.Printf("WARNING: failed to log stock movement for product %s (%s %+d, %d -> %d, order %q): %v",
			productID, movementType, quantityChange, previousStock, newStock, orderID, err)
	}
}
