package services_test

import (
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
)

func newCartService(t *testing.T, products ...models.Product) (*services.CartService, *repositories.MockCartRepository) {
	t.Helper()
	cartRepo := repositories.NewMockCartRepository()
	productRepo := repositories.NewMockProductRepository()
	for i := range products {
		assert.NoError(t, productRepo.Create(&products[i]))
	}
	return services.NewCartService(cartRepo, productRepo), cartRepo
}

func TestCartService_GetOrCreateCart(t *testing.T) {
	service, _ := newCartService(t)

	cart, err := service.GetOrCreateCart("cust-1")
	assert.NoError(t, err)
	assert.NotEmpty(t, cart.ID)

	// A second call returns the same cart
	again, err := service.GetOrCreateCart("cust-1")
	assert.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
}

func TestCartService_AddItemFreezesPrice(t *testing.T) {
	service, _ := newCartService(t,
		models.Product{ID: "p1", Name: "Widget", Price: dec("10.00"), StockQuantity: 5},
	)
	cart, err := service.GetOrCreateCart("cust-1")
	assert.NoError(t, err)

	updated, err := service.AddItem(cart.ID, "p1", 2)
	assert.NoError(t, err)
	assert.Len(t, updated.Items, 1)
	assert.Equal(t, "10.00", updated.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "20.00", updated.TotalPrice.StringFixed(2))

	// Adding the same product again merges into one line
	updated, err = service.AddItem(cart.ID, "p1", 3)
	assert.NoError(t, err)
	assert.Len(t, updated.Items, 1)
	assert.Equal(t, 5, updated.Items[0].Quantity)
	assert.Equal(t, "50.00", updated.TotalPrice.StringFixed(2))
}

func TestCartService_AddItemValidation(t *testing.T) {
	service, _ := newCartService(t,
		models.Product{ID: "p1", Name: "Widget", Price: dec("10.00"), StockQuantity: 5},
		models.Product{ID: "gone", Name: "Gone", Price: dec("10.00"), StockQuantity: 0},
	)
	cart, err := service.GetOrCreateCart("cust-1")
	assert.NoError(t, err)

	_, err = service.AddItem(cart.ID, "p1", 0)
	assert.Error(t, err)

	_, err = service.AddItem(cart.ID, "missing", 1)
	assert.ErrorIs(t, err, repositories.ErrProductNotFound)

	_, err = service.AddItem(cart.ID, "gone", 1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not available")
}

func TestCartService_UpdateAndRemoveItem(t *testing.T) {
	service, _ := newCartService(t,
		models.Product{ID: "p1", Name: "Widget", Price: dec("10.00"), StockQuantity: 5},
		models.Product{ID: "p2", Name: "Gadget", Price: dec("4.00"), StockQuantity: 5},
	)
	cart, err := service.GetOrCreateCart("cust-1")
	assert.NoError(t, err)

	_, err = service.AddItem(cart.ID, "p1", 2)
	assert.NoError(t, err)
	_, err = service.AddItem(cart.ID, "p2", 1)
	assert.NoError(t, err)

	updated, err := service.UpdateItemQuantity(cart.ID, "p1", 4)
	assert.NoError(t, err)
	assert.Equal(t, "44.00", updated.TotalPrice.StringFixed(2))

	// Quantity zero removes the line
	updated, err = service.UpdateItemQuantity(cart.ID, "p2", 0)
	assert.NoError(t, err)
	assert.Len(t, updated.Items, 1)
	assert.Equal(t, "40.00", updated.TotalPrice.StringFixed(2))

	updated, err = service.RemoveItem(cart.ID, "p1")
	assert.NoError(t, err)
	assert.Empty(t, updated.Items)
	assert.Equal(t, "0.00", updated.TotalPrice.StringFixed(2))

	_, err = service.RemoveItem(cart.ID, "p1")
	assert.ErrorIs(t, err, repositories.ErrCartItemNotFound)

	_, err = service.UpdateItemQuantity(cart.ID, "never-added", 2)
	assert.ErrorIs(t, err, repositories.ErrCartItemNotFound)
}
