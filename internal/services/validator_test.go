package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
)

func newValidator(t *testing.T, products ...models.Product) (*services.BusinessRuleValidator, *repositories.MockOrderRepository) {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	orderRepo := repositories.NewMockOrderRepository()
	for i := range products {
		assert.NoError(t, productRepo.Create(&products[i]))
	}
	return services.NewBusinessRuleValidator(orderRepo, productRepo), orderRepo
}

func TestValidator_CustomerOrderLimits(t *testing.T) {
	v, orderRepo := newValidator(t)

	// A new customer is well under every limit
	result, err := v.ValidateCustomerOrderLimits("cust-1", dec("50.00"))
	assert.NoError(t, err)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)

	// Ten orders today hits the daily cap; cancelled orders do not count
	for i := 0; i < 10; i++ {
		assert.NoError(t, orderRepo.Create(&models.Order{
			CustomerID: "cust-2", Status: models.StatusPending, TotalAmount: dec("10.00"),
		}))
	}
	assert.NoError(t, orderRepo.Create(&models.Order{
		CustomerID: "cust-2", Status: models.StatusCancelled, TotalAmount: dec("10.00"),
	}))

	result, err = v.ValidateCustomerOrderLimits("cust-2", dec("50.00"))
	assert.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "daily order limit")
}

func TestValidator_MonthlyOrderValueLimit(t *testing.T) {
	v, orderRepo := newValidator(t)

	assert.NoError(t, orderRepo.Create(&models.Order{
		CustomerID: "cust-1", Status: models.StatusDelivered, TotalAmount: dec("49500.00"),
	}))

	// 49500 + 600 breaches the 50000 monthly cap
	result, err := v.ValidateCustomerOrderLimits("cust-1", dec("600.00"))
	assert.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "monthly order value limit")

	// Pending orders do not count toward the monthly value
	v2, orderRepo2 := newValidator(t)
	assert.NoError(t, orderRepo2.Create(&models.Order{
		CustomerID: "cust-1", Status: models.StatusPending, TotalAmount: dec("49500.00"),
	}))
	result, err = v2.ValidateCustomerOrderLimits("cust-1", dec("600.00"))
	assert.NoError(t, err)
	assert.True(t, result.Valid)
}

func TestValidator_HighValueWarning(t *testing.T) {
	v, _ := newValidator(t)

	result, err := v.ValidateCustomerOrderLimits("cust-1", dec("1500.00"))
	assert.NoError(t, err)
	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Warnings)
	assert.Contains(t, result.Warnings[len(result.Warnings)-1], "high-value")
}

func TestValidator_OrderItems(t *testing.T) {
	v, _ := newValidator(t)

	result := v.ValidateOrderItems(nil)
	assert.False(t, result.Valid)

	items := make([]models.CartItem, 101)
	for i := range items {
		items[i] = models.CartItem{ProductID: "p", Quantity: 1, UnitPrice: dec("1.00")}
	}
	result = v.ValidateOrderItems(items)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "maximum")

	result = v.ValidateOrderItems([]models.CartItem{
		{ProductID: "p", Quantity: 0, UnitPrice: dec("1.00")},
	})
	assert.False(t, result.Valid)

	result = v.ValidateOrderItems([]models.CartItem{
		{ProductID: "p", Quantity: -1, UnitPrice: dec("1.00")},
	})
	assert.False(t, result.Valid)

	// Bulk quantities validate but carry a warning
	result = v.ValidateOrderItems([]models.CartItem{
		{ProductID: "p", Quantity: 50, UnitPrice: dec("1.00")},
	})
	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Warnings)
}

func TestValidator_InventoryConstraints(t *testing.T) {
	v, _ := newValidator(t,
		models.Product{ID: "a", Name: "Alpha", Price: dec("10.00"), StockQuantity: 10, MinStockLevel: 3},
		models.Product{ID: "gone", Name: "Gone", Price: dec("10.00"), StockQuantity: 0},
	)

	result := v.ValidateInventoryConstraints([]models.CartItem{
		{ProductID: "a", Quantity: 2, UnitPrice: dec("10.00")},
	})
	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)

	// Dipping below the product's minimum stock level warns
	result = v.ValidateInventoryConstraints([]models.CartItem{
		{ProductID: "a", Quantity: 9, UnitPrice: dec("10.00")},
	})
	assert.True(t, result.Valid)
	assert.Contains(t, result.Warnings[0], "minimum stock level")

	result = v.ValidateInventoryConstraints([]models.CartItem{
		{ProductID: "a", Quantity: 11, UnitPrice: dec("10.00")},
	})
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "insufficient stock")

	result = v.ValidateInventoryConstraints([]models.CartItem{
		{ProductID: "gone", Quantity: 1, UnitPrice: dec("10.00")},
	})
	assert.False(t, result.Valid)

	result = v.ValidateInventoryConstraints([]models.CartItem{
		{ProductID: "missing", Quantity: 1, UnitPrice: dec("10.00")},
	})
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "not found")
}

func TestValidator_BulkOperation(t *testing.T) {
	v, _ := newValidator(t)

	assert.True(t, v.ValidateBulkOperation("update", 100).Valid)
	assert.False(t, v.ValidateBulkOperation("update", 101).Valid)
	assert.True(t, v.ValidateBulkOperation("delete", 50).Valid)
	assert.False(t, v.ValidateBulkOperation("delete", 51).Valid)
	assert.True(t, v.ValidateBulkOperation("create", 200).Valid)
	assert.False(t, v.ValidateBulkOperation("create", 201).Valid)

	assert.False(t, v.ValidateBulkOperation("merge", 10).Valid)
	assert.False(t, v.ValidateBulkOperation("update", 0).Valid)

	// 80% of the cap warns without failing
	result := v.ValidateBulkOperation("update", 85)
	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Warnings)
}

func TestValidator_ProductData(t *testing.T) {
	v, _ := newValidator(t)

	valid := &models.Product{Name: "Widget", Price: dec("9.99"), StockQuantity: 5}
	assert.NoError(t, v.ValidateProductData(valid))

	missingName := &models.Product{Price: dec("9.99")}
	assert.Error(t, v.ValidateProductData(missingName))
}
