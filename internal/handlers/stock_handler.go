package handlers

import (
	"errors"
	"fmt"
	"log"

	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// StockHandler handles HTTP requests for inventory management.
type StockHandler struct {
	stockManager *services.StockManager
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(stockManager *services.StockManager) *StockHandler {
	return &StockHandler{
		stockManager: stockManager,
	}
}

// RegisterRoutes registers the stock routes with the Fiber app.
func (h *StockHandler) RegisterRoutes(router fiber.Router) {
	stockRoutes := router.Group("/stock")
	stockRoutes.Get("/low", h.HandleGetLowStock)
	stockRoutes.Get("/out-of-stock", h.HandleGetOutOfStock)
	stockRoutes.Post("/check", h.HandleBulkCheck)
	stockRoutes.Get("/:productId/availability", h.HandleCheckAvailability)
	stockRoutes.Get("/:productId/movements", h.HandleGetMovements)
	stockRoutes.Post("/:productId/reserve", h.HandleReserve)
	stockRoutes.Post("/:productId/release", h.HandleRelease)
	stockRoutes.Put("/:productId/quantity", h.HandleSetQuantity)
}

// HandleCheckAvailability reports whether the requested quantity can be
// fulfilled from current stock.
func (h *StockHandler) HandleCheckAvailability(c *fiber.Ctx) error {
	productID := c.Params("productId")
	quantity := c.QueryInt("quantity", 1)

	result := h.stockManager.CheckStockAvailability(productID, quantity)
	return c.JSON(result)
}

// BulkCheckRequest represents the request body for a multi-product stock check.
type BulkCheckRequest struct {
	Items []services.StockRequest `json:"items"`
}

// HandleBulkCheck checks availability across several products at once.
func (h *StockHandler) HandleBulkCheck(c *fiber.Ctx) error {
	var req BulkCheckRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if len(req.Items) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "at least one item is required",
		})
	}

	result := h.stockManager.CheckMultipleProductsStock(req.Items)
	return c.JSON(result)
}

// StockOperationRequest represents the request body for reserve and release.
type StockOperationRequest struct {
	Quantity int    `json:"quantity"`
	OrderID  string `json:"order_id"`
}

// HandleReserve atomically reserves units of a product.
func (h *StockHandler) HandleReserve(c *fiber.Ctx) error {
	productID := c.Params("productId")
	var req StockOperationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	result, err := h.stockManager.ReserveStock(productID, req.Quantity, req.OrderID)
	if err != nil {
		log.Printf("Error reserving stock for product %s: %v", productID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not reserve stock",
			"error":   err.Error(),
		})
	}
	if !result.Success {
		return c.Status(fiber.StatusConflict).JSON(result)
	}
	return c.JSON(result)
}

// HandleRelease returns previously reserved units to stock.
func (h *StockHandler) HandleRelease(c *fiber.Ctx) error {
	productID := c.Params("productId")
	var req StockOperationRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	result, err := h.stockManager.ReleaseStock(productID, req.Quantity, req.OrderID)
	if err != nil {
		log.Printf("Error releasing stock for product %s: %v", productID, err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not release stock",
			"error":   err.Error(),
		})
	}
	if !result.Success {
		return c.Status(fiber.StatusConflict).JSON(result)
	}
	return c.JSON(result)
}

// SetQuantityRequest represents the request body for a manual stock adjustment.
type SetQuantityRequest struct {
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
}

// HandleSetQuantity sets a product's stock to an absolute quantity.
func (h *StockHandler) HandleSetQuantity(c *fiber.Ctx) error {
	productID := c.Params("productId")
	var req SetQuantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	result, err := h.stockManager.UpdateStockQuantity(productID, req.Quantity, req.Reason)
	if err != nil {
		log.Printf("Error updating stock for product %s: %v", productID, err)
		if errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Product with ID %s not found", productID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update stock",
			"error":   err.Error(),
		})
	}
	if !result.Success {
		return c.Status(fiber.StatusBadRequest).JSON(result)
	}
	return c.JSON(result)
}

// HandleGetLowStock lists products at or below the low stock threshold. The
// optional threshold query parameter overrides the configured default.
func (h *StockHandler) HandleGetLowStock(c *fiber.Ctx) error {
	threshold := c.QueryInt("threshold", 0)
	report, err := h.stockManager.GetLowStockProducts(threshold)
	if err != nil {
		log.Printf("Error getting low stock report: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve low stock report",
			"error":   err.Error(),
		})
	}
	return c.JSON(report)
}

// HandleGetOutOfStock lists products with zero stock.
func (h *StockHandler) HandleGetOutOfStock(c *fiber.Ctx) error {
	report, err := h.stockManager.GetOutOfStockProducts()
	if err != nil {
		log.Printf("Error getting out of stock report: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve out of stock report",
			"error":   err.Error(),
		})
	}
	return c.JSON(report)
}

// HandleGetMovements lists the stock movement history for a product, newest
// first.
func (h *StockHandler) HandleGetMovements(c *fiber.Ctx) error {
	productID := c.Params("productId")
	movements, err := h.stockManager.GetMovementHistory(productID)
	if err != nil {
		log.Printf("Error getting stock movements for product %s: %v", productID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve stock movements",
			"error":   err.Error(),
		})
	}
	return c.JSON(movements)
}
