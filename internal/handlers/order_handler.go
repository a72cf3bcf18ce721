package handlers

import (
	"errors"
	"fmt"
	"log"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler handles HTTP requests for orders and their status workflow.
type OrderHandler struct {
	orderService *services.OrderService
	workflow     *services.OrderWorkflowManager
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *services.OrderService, workflow *services.OrderWorkflowManager) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		workflow:     workflow,
	}
}

// RegisterRoutes registers the order routes with the Fiber app.
func (h *OrderHandler) RegisterRoutes(router fiber.Router) {
	orderRoutes := router.Group("/orders")
	orderRoutes.Get("/", h.HandleGetOrders)
	orderRoutes.Get("/status-summary", h.HandleGetStatusSummary)
	orderRoutes.Get("/status/:status", h.HandleGetOrdersByStatus)
	orderRoutes.Get("/:id", h.HandleGetOrderByID)
	orderRoutes.Delete("/:id", h.HandleDeleteOrder)
	orderRoutes.Patch("/:id/status", h.HandleUpdateOrderStatus)
	orderRoutes.Post("/bulk-status", h.HandleBulkUpdateStatus)
	orderRoutes.Post("/:id/validate", h.HandleValidateOrder)
}

// HandleGetOrders retrieves all orders.
func (h *OrderHandler) HandleGetOrders(c *fiber.Ctx) error {
	orders, err := h.orderService.GetAllOrders()
	if err != nil {
		log.Printf("Error getting all orders: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetOrderByID retrieves a single order by its ID.
func (h *OrderHandler) HandleGetOrderByID(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		log.Printf("Error getting order by ID %s: %v", orderID, err)
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}
	return c.JSON(order)
}

// HandleDeleteOrder removes an order, releasing any stock it holds.
func (h *OrderHandler) HandleDeleteOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	if err := h.orderService.DeleteOrder(orderID); err != nil {
		log.Printf("Error deleting order %s: %v", orderID, err)
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete order",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Order %s deleted successfully", orderID),
	})
}

// StatusUpdateRequest represents the request body for a status transition.
type StatusUpdateRequest struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
	UserID string `json:"user_id"`
}

// HandleUpdateOrderStatus transitions an order through the status workflow.
// Rejected transitions return 409 with the valid alternatives.
func (h *OrderHandler) HandleUpdateOrderStatus(c *fiber.Ctx) error {
	orderID := c.Params("id")
	var req StatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing request body for status update: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body for status update",
			"error":   err.Error(),
		})
	}
	if req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Status is required for order status update.",
		})
	}

	result, err := h.workflow.TransitionOrderStatus(orderID, models.OrderStatus(req.Status), req.Reason, req.UserID)
	if err != nil {
		log.Printf("Error updating order status for order %s: %v", orderID, err)
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not update order status",
			"error":   err.Error(),
		})
	}

	if !result.Success {
		return c.Status(fiber.StatusConflict).JSON(result)
	}
	return c.JSON(result)
}

// BulkStatusUpdateRequest represents the request body for a bulk transition.
type BulkStatusUpdateRequest struct {
	OrderIDs []string `json:"order_ids"`
	Status   string   `json:"status"`
	Reason   string   `json:"reason"`
	UserID   string   `json:"user_id"`
}

// HandleBulkUpdateStatus transitions a batch of orders independently.
func (h *OrderHandler) HandleBulkUpdateStatus(c *fiber.Ctx) error {
	var req BulkStatusUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if len(req.OrderIDs) == 0 || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "order_ids and status are required",
		})
	}

	result := h.workflow.BulkTransitionOrders(req.OrderIDs, models.OrderStatus(req.Status), req.Reason, req.UserID)
	return c.JSON(result)
}

// HandleGetOrdersByStatus lists orders in the given status. The optional
// limit query parameter caps the result, newest first.
func (h *OrderHandler) HandleGetOrdersByStatus(c *fiber.Ctx) error {
	status := models.OrderStatus(c.Params("status"))
	limit := c.QueryInt("limit", 0)

	orders, err := h.workflow.GetOrdersByStatus(status, limit)
	if err != nil {
		log.Printf("Error getting orders by status %s: %v", status, err)
		if !status.IsValid() {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message":        fmt.Sprintf("Invalid order status: %s", status),
				"valid_statuses": models.AllOrderStatuses(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve orders",
			"error":   err.Error(),
		})
	}
	return c.JSON(orders)
}

// HandleGetStatusSummary returns the order count per status.
func (h *OrderHandler) HandleGetStatusSummary(c *fiber.Ctx) error {
	summary, err := h.workflow.GetOrderStatusSummary()
	if err != nil {
		log.Printf("Error getting order status summary: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve status summary",
			"error":   err.Error(),
		})
	}
	return c.JSON(summary)
}

// HandleValidateOrder runs the business rule checks over an order.
func (h *OrderHandler) HandleValidateOrder(c *fiber.Ctx) error {
	orderID := c.Params("id")
	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrOrderNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Order with ID %s not found", orderID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve order",
			"error":   err.Error(),
		})
	}

	result := h.workflow.ValidateOrderBusinessRules(order)
	return c.JSON(result)
}
