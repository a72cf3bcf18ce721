package handlers

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
)

// CartHandler handles HTTP requests for shopping carts, including checkout.
type CartHandler struct {
	cartService     *services.CartService
	checkoutService *services.CheckoutService
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(cartService *services.CartService, checkoutService *services.CheckoutService) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
	}
}

// RegisterRoutes registers the cart routes with the Fiber app.
func (h *CartHandler) RegisterRoutes(router fiber.Router) {
	cartRoutes := router.Group("/carts")
	cartRoutes.Post("/", h.HandleGetOrCreateCart)
	cartRoutes.Get("/:id", h.HandleGetCart)
	cartRoutes.Post("/:id/items", h.HandleAddItem)
	cartRoutes.Put("/:id/items/:productId", h.HandleUpdateItem)
	cartRoutes.Delete("/:id/items/:productId", h.HandleRemoveItem)
	cartRoutes.Delete("/:id/items", h.HandleClearCart)
	cartRoutes.Post("/:id/checkout", h.HandleCheckout)
}

// HandleGetOrCreateCart returns the requesting customer's cart, creating one
// if needed.
func (h *CartHandler) HandleGetOrCreateCart(c *fiber.Ctx) error {
	var req struct {
		CustomerID string `json:"customer_id"`
	}
	if err := c.BodyParser(&req); err != nil || req.CustomerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "customer_id is required",
		})
	}

	cart, err := h.cartService.GetOrCreateCart(req.CustomerID)
	if err != nil {
		log.Printf("Error getting or creating cart for customer %s: %v", req.CustomerID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not get or create cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(cart)
}

// HandleGetCart retrieves a cart with its items.
func (h *CartHandler) HandleGetCart(c *fiber.Ctx) error {
	cartID := c.Params("id")
	cart, err := h.cartService.GetCart(cartID)
	if err != nil {
		log.Printf("Error getting cart %s: %v", cartID, err)
		if errors.Is(err, repositories.ErrCartNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Cart with ID %s not found", cartID),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(cart)
}

// AddItemRequest represents the request body for adding a cart item.
type AddItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// HandleAddItem adds a product line to the cart.
func (h *CartHandler) HandleAddItem(c *fiber.Ctx) error {
	cartID := c.Params("id")
	var req AddItemRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.ProductID == "" || req.Quantity <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "product_id and a positive quantity are required",
		})
	}

	cart, err := h.cartService.AddItem(cartID, req.ProductID, req.Quantity)
	if err != nil {
		log.Printf("Error adding item to cart %s: %v", cartID, err)
		if errors.Is(err, repositories.ErrCartNotFound) || errors.Is(err, repositories.ErrProductNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not add item to cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(cart)
}

// HandleUpdateItem sets the quantity of a cart line.
func (h *CartHandler) HandleUpdateItem(c *fiber.Ctx) error {
	cartID := c.Params("id")
	productID := c.Params("productId")
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	cart, err := h.cartService.UpdateItemQuantity(cartID, productID, req.Quantity)
	if err != nil {
		log.Printf("Error updating item %s in cart %s: %v", productID, cartID, err)
		if errors.Is(err, repositories.ErrCartNotFound) || errors.Is(err, repositories.ErrCartItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not update cart item",
			"error":   err.Error(),
		})
	}
	return c.JSON(cart)
}

// HandleRemoveItem removes a product line from the cart.
func (h *CartHandler) HandleRemoveItem(c *fiber.Ctx) error {
	cartID := c.Params("id")
	productID := c.Params("productId")

	cart, err := h.cartService.RemoveItem(cartID, productID)
	if err != nil {
		log.Printf("Error removing item %s from cart %s: %v", productID, cartID, err)
		if errors.Is(err, repositories.ErrCartNotFound) || errors.Is(err, repositories.ErrCartItemNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not remove cart item",
			"error":   err.Error(),
		})
	}
	return c.JSON(cart)
}

// HandleClearCart removes all items from the cart.
func (h *CartHandler) HandleClearCart(c *fiber.Ctx) error {
	cartID := c.Params("id")
	if err := h.cartService.ClearCart(cartID); err != nil {
		log.Printf("Error clearing cart %s: %v", cartID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not clear cart",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("Cart %s cleared", cartID),
	})
}

// CheckoutRequest represents the request body for converting a cart to an order.
type CheckoutRequest struct {
	CustomerID string `json:"customer_id"`
	services.CheckoutOptions
}

// HandleCheckout converts the cart into a pending order with stock reserved.
func (h *CartHandler) HandleCheckout(c *fiber.Ctx) error {
	cartID := c.Params("id")
	var req CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if req.CustomerID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "customer_id is required",
		})
	}

	order, err := h.checkoutService.ConvertCartToOrder(cartID, req.CustomerID, req.CheckoutOptions)
	if err != nil {
		log.Printf("Error checking out cart %s: %v", cartID, err)
		if errors.Is(err, repositories.ErrCartNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": fmt.Sprintf("Cart with ID %s not found", cartID),
			})
		}
		if strings.Contains(err.Error(), "insufficient stock") || strings.Contains(err.Error(), "validation failed") {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"message": "Checkout failed",
				"error":   err.Error(),
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Could not checkout cart",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}
