package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
)

type workflowFixture struct {
	workflow     *services.OrderWorkflowManager
	orderRepo    *repositories.MockOrderRepository
	productRepo  *repositories.MockProductRepository
	stockManager *services.StockManager
}

func newWorkflowFixture(t *testing.T, products ...models.Product) *workflowFixture {
	t.Helper()
	productRepo := repositories.NewMockProductRepository()
	movementRepo := repositories.NewMockStockMovementRepository()
	orderRepo := repositories.NewMockOrderRepository()
	for i := range products {
		assert.NoError(t, productRepo.Create(&products[i]))
	}
	stockManager := services.NewStockManager(productRepo, movementRepo, services.DefaultStockConfig())
	workflow := services.NewOrderWorkflowManager(orderRepo, stockManager, services.NewPricingCalculator(), nil)
	return &workflowFixture{
		workflow:     workflow,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		stockManager: stockManager,
	}
}

func (f *workflowFixture) createOrder(t *testing.T, status models.OrderStatus, items ...models.OrderItem) *models.Order {
	t.Helper()
	order := &models.Order{
		CustomerID: "cust-1",
		Status:     status,
		Items:      items,
	}
	for i := range order.Items {
		order.Items[i].CalculateSubtotal()
		order.TotalAmount = order.TotalAmount.Add(order.Items[i].Subtotal)
	}
	assert.NoError(t, f.orderRepo.Create(order))
	return order
}

func TestOrderWorkflow_TransitionTable(t *testing.T) {
	f := newWorkflowFixture(t)

	allowed := map[models.OrderStatus][]models.OrderStatus{
		models.StatusPending:    {models.StatusConfirmed, models.StatusCancelled, models.StatusFailed},
		models.StatusConfirmed:  {models.StatusProcessing, models.StatusCancelled},
		models.StatusProcessing: {models.StatusShipped, models.StatusCancelled},
		models.StatusShipped:    {models.StatusDelivered, models.StatusCancelled},
		models.StatusDelivered:  {models.StatusRefunded},
		models.StatusCancelled:  {},
		models.StatusRefunded:   {},
		models.StatusFailed:     {models.StatusPending},
	}

	for _, from := range models.AllOrderStatuses() {
		allowedTargets := make(map[models.OrderStatus]bool)
		for _, to := range allowed[from] {
			allowedTargets[to] = true
		}
		for _, to := range models.AllOrderStatuses() {
			got := f.workflow.CanTransitionTo(from, to)
			assert.Equal(t, allowedTargets[to], got, "transition %s -> %s", from, to)
		}
		assert.ElementsMatch(t, allowed[from], f.workflow.GetValidTransitions(from))
	}
}

func TestOrderWorkflow_RejectsInvalidTransition(t *testing.T) {
	f := newWorkflowFixture(t)
	order := f.createOrder(t, models.StatusPending,
		models.OrderItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("10.00")})

	// pending cannot jump straight to shipped
	result, err := f.workflow.TransitionOrderStatus(order.ID, models.StatusShipped, "", "admin")
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, models.StatusPending, result.CurrentStatus)
	assert.ElementsMatch(t, []models.OrderStatus{
		models.StatusConfirmed, models.StatusCancelled, models.StatusFailed,
	}, result.ValidTransitions)

	// The rejection changed nothing
	stored, err := f.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestOrderWorkflow_RejectsUnknownStatus(t *testing.T) {
	f := newWorkflowFixture(t)
	order := f.createOrder(t, models.StatusPending,
		models.OrderItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("10.00")})

	result, err := f.workflow.TransitionOrderStatus(order.ID, models.OrderStatus("teleported"), "", "admin")
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "invalid order status")
}

func TestOrderWorkflow_MissingOrder(t *testing.T) {
	f := newWorkflowFixture(t)

	_, err := f.workflow.TransitionOrderStatus("no-such-order", models.StatusConfirmed, "", "admin")
	assert.Error(t, err)
	assert.True(t, services.IsOrderNotFound(err))
}

func TestOrderWorkflow_ConfirmReservesStockAndPrices(t *testing.T) {
	f := newWorkflowFixture(t, models.Product{ID: "p1", Name: "Widget", Price: dec("10.00"), StockQuantity: 10})
	order := f.createOrder(t, models.StatusPending,
		models.OrderItem{ProductID: "p1", Quantity: 4, UnitPrice: dec("10.00")})

	result, err := f.workflow.TransitionOrderStatus(order.ID, models.StatusConfirmed, "payment received", "admin")
	assert.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, models.StatusPending, result.PreviousStatus)
	assert.Equal(t, models.StatusConfirmed, result.CurrentStatus)

	product, err := f.productRepo.GetByID("p1")
	assert.NoError(t, err)
	assert.Equal(t, 6, product.StockQuantity)

	// Pricing snapshot was recomputed and persisted:
	// 40.00 + 2.80 tax (default 7%) + 5.99 standard shipping
	stored, err := f.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
	assert.Equal(t, "40.00", stored.Subtotal.StringFixed(2))
	assert.Equal(t, "2.80", stored.TaxAmount.StringFixed(2))
	assert.Equal(t, "5.99", stored.ShippingCost.StringFixed(2))
	assert.Equal(t, "48.79", stored.TotalAmount.StringFixed(2))
}

func TestOrderWorkflow_ConfirmAbortsAndRollsBackOnShortStock(t *testing.T) {
	f := newWorkflowFixture(t,
		models.Product{ID: "a", Name: "Alpha", Price: dec("10.00"), StockQuantity: 10},
		models.Product{ID: "b", Name: "Beta", Price: dec("5.00"), StockQuantity: 1},
	)
	order := f.createOrder(t, models.StatusPending,
		models.OrderItem{ProductID: "a", Quantity: 3, UnitPrice: dec("10.00")},
		models.OrderItem{ProductID: "b", Quantity: 2, UnitPrice: dec("5.00")},
	)

	result, err := f.workflow.TransitionOrderStatus(order.ID, models.StatusConfirmed, "", "admin")
	assert.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "cannot confirm order")

	// Order stays pending; the reservation of product a was rolled back
	stored, err := f.orderRepo.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)

	productA, _ := f.productRepo.GetByID("a")
	assert.Equal(t, 10, productA.StockQuantity)
	productB, _ := f.productRepo.GetByID("b")
	assert.Equal(t, 1, productB.StockQuantity)
}

func TestOrderWorkflow_CancelReleasesStock(t *testing.T) {
	f := newWorkflowFixture(t, models.Product{ID: "p1", Name: "Widget", Price: dec("10.00"), StockQuantity: 10})
	order := f.createOrder(t, models.StatusPending,
		models.OrderItem{ProductID: "p1", Quantity: 4, UnitPrice: dec("10.00")})

	_, err := f.workflow.TransitionOrderStatus(order.ID, models.StatusConfirmed, "", "admin")
	assert.NoError(t, err)
	product, _ := f.productRepo.GetByID("p1")
	assert.Equal(t, 6, product.StockQuantity)

	result, err := f.workflow.TransitionOrderStatus(order.ID, models.StatusCancelled, "customer request", "admin")
	assert.NoError(t, err)
	assert.True(t, result.Success)

	product, _ = f.productRepo.GetByID("p1")
	assert.Equal(t, 10, product.StockQuantity)

	stored, _ := f.orderRepo.GetByID(order.ID)
	assert.Equal(t, models.StatusCancelled, stored.Status)
	// Cancelled is terminal
	assert.Empty(t, f.workflow.GetValidTransitions(models.StatusCancelled))
}

func TestOrderWorkflow_PendingCancelDoesNotReleaseStock(t *testing.T) {
	f := newWorkflowFixture(t, models.Product{ID: "p1", Name: "Widget", Price: dec("10.00"), StockQuantity: 10})
	order := f.createOrder(t, models.StatusPending,
		models.OrderItem{ProductID: "p1", Quantity: 4, UnitPrice: dec("10.00")})

	// A pending order holds no stock, so cancelling it must not increment
	result, err := f.workflow.TransitionOrderStatus(order.ID, models.StatusCancelled, "", "admin")
	assert.NoError(t, err)
	assert.True(t, result.Success)

	product, _ := f.productRepo.GetByID("p1")
	assert.Equal(t, 10, product.StockQuantity)
}

func TestOrderWorkflow_BulkTransitionIndependence(t *testing.T) {
	f := newWorkflowFixture(t, models.Product{ID: "p1", Name: "Widget", Price: dec("10.00"), StockQuantity: 10})
	pendingOrder := f.createOrder(t, models.StatusPending,
		models.OrderItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("10.00")})
	shippedOrder := f.createOrder(t, models.StatusShipped,
		models.OrderItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("10.00")})

	// Confirming is valid for the pending order, invalid for the shipped one,
	// and the missing one errors; each is handled independently.
	result := f.workflow.BulkTransitionOrders(
		[]string{pendingOrder.ID, shippedOrder.ID, "no-such-order"},
		models.StatusConfirmed, "batch confirm", "admin")

	assert.Equal(t, 3, result.TotalOrders)
	assert.Equal(t, 1, result.SuccessfulTransitions)
	assert.Equal(t, 2, result.FailedTransitions)
	assert.Len(t, result.Results, 3)
	assert.True(t, result.Results[0].Result.Success)
	assert.False(t, result.Results[1].Result.Success)
	assert.NotEmpty(t, result.Results[2].Error)

	stored, _ := f.orderRepo.GetByID(pendingOrder.ID)
	assert.Equal(t, models.StatusConfirmed, stored.Status)
	stored, _ = f.orderRepo.GetByID(shippedOrder.ID)
	assert.Equal(t, models.StatusShipped, stored.Status)
}

func TestOrderWorkflow_StatusSummary(t *testing.T) {
	f := newWorkflowFixture(t)
	f.createOrder(t, models.StatusPending, models.OrderItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("10.00")})
	f.createOrder(t, models.StatusPending, models.OrderItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("10.00")})
	f.createOrder(t, models.StatusDelivered, models.OrderItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("10.00")})

	summary, err := f.workflow.GetOrderStatusSummary()
	assert.NoError(t, err)
	assert.Equal(t, int64(2), summary[models.StatusPending])
	assert.Equal(t, int64(1), summary[models.StatusDelivered])
	// Every status appears, zero-filled
	assert.Len(t, summary, len(models.AllOrderStatuses()))
	assert.Equal(t, int64(0), summary[models.StatusRefunded])
}

func TestOrderWorkflow_GetOrdersByStatus(t *testing.T) {
	f := newWorkflowFixture(t)
	f.createOrder(t, models.StatusPending, models.OrderItem{ProductID: "p1", Quantity: 1, UnitPrice: dec("10.00")})

	orders, err := f.workflow.GetOrdersByStatus(models.StatusPending, 0)
	assert.NoError(t, err)
	assert.Len(t, orders, 1)

	_, err = f.workflow.GetOrdersByStatus(models.OrderStatus("bogus"), 0)
	assert.Error(t, err)
}

func TestOrderWorkflow_ValidateOrderBusinessRules(t *testing.T) {
	f := newWorkflowFixture(t, models.Product{ID: "p1", Name: "Widget", Price: dec("10.00"), StockQuantity: 2})

	empty := &models.Order{Status: models.StatusPending}
	result := f.workflow.ValidateOrderBusinessRules(empty)
	assert.False(t, result.Valid)

	highValue := &models.Order{
		Status:      models.StatusPending,
		TotalAmount: dec("15000.00"),
		Items:       []models.OrderItem{{ProductID: "p1", Quantity: 1, UnitPrice: dec("15000.00")}},
	}
	result = f.workflow.ValidateOrderBusinessRules(highValue)
	assert.True(t, result.Valid)
	assert.NotEmpty(t, result.Warnings)

	// Confirmed orders re-verify stock against current levels
	confirmed := &models.Order{
		Status:      models.StatusConfirmed,
		TotalAmount: dec("50.00"),
		Items:       []models.OrderItem{{ProductID: "p1", Quantity: 5, UnitPrice: dec("10.00")}},
	}
	result = f.workflow.ValidateOrderBusinessRules(confirmed)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors[0], "insufficient stock")
}
