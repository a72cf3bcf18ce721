package services

import (
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// CartService manages customer shopping carts. Item unit prices are frozen
// from the product catalog when a line is added; later catalog price changes
// do not affect carts.
type CartService struct {
	cartRepo    repositories.CartRepository
	productRepo repositories.ProductRepository
}

// NewCartService creates a new CartService.
func NewCartService(cartRepo repositories.CartRepository, productRepo repositories.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart retrieves a cart with its items.
func (s *CartService) GetCart(cartID string) (*models.Cart, error) {
	return s.cartRepo.GetByID(cartID)
}

// GetOrCreateCart returns the customer's cart, creating one if none exists.
func (s *CartService) GetOrCreateCart(customerID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByCustomerID(customerID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, repositories.ErrCartNotFound) {
		return nil, err
	}

	cart = &models.Cart{CustomerID: customerID}
	if err := s.cartRepo.Create(cart); err != nil {
		return nil, fmt.Errorf("failed to create cart: %w", err)
	}
	return cart, nil
}

// AddItem adds a product line to the cart, or increases the quantity of an
// existing line. The line's unit price is frozen from the current catalog.
func (s *CartService) AddItem(cartID, productID string, quantity int) (*models.Cart, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if !product.IsAvailable {
		return nil, fmt.Errorf("product %s is not available", product.Name)
	}

	var existing *models.CartItem
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			existing = &cart.Items[i]
			break
		}
	}

	if existing != nil {
		existing.Quantity += quantity
		existing.CalculateSubtotal()
		if err := s.cartRepo.UpdateItem(existing); err != nil {
			return nil, fmt.Errorf("failed to update cart item: %w", err)
		}
	} else {
		item := models.CartItem{
			CartID:    cart.ID,
			ProductID: productID,
			Quantity:  quantity,
			UnitPrice: product.Price,
		}
		item.CalculateSubtotal()
		if err := s.cartRepo.AddItem(&item); err != nil {
			return nil, fmt.Errorf("failed to add cart item: %w", err)
		}
	}

	return s.refreshTotal(cart.ID)
}

// UpdateItemQuantity sets the quantity of a cart line. Zero removes the line.
func (s *CartService) UpdateItemQuantity(cartID, productID string, quantity int) (*models.Cart, error) {
	if quantity < 0 {
		return nil, fmt.Errorf("quantity cannot be negative, got %d", quantity)
	}
	if quantity == 0 {
		return s.RemoveItem(cartID, productID)
	}

	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, err
	}
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID {
			cart.Items[i].Quantity = quantity
			cart.Items[i].CalculateSubtotal()
			if err := s.cartRepo.UpdateItem(&cart.Items[i]); err != nil {
				return nil, fmt.Errorf("failed to update cart item: %w", err)
			}
			return s.refreshTotal(cart.ID)
		}
	}
	return nil, repositories.ErrCartItemNotFound
}

// RemoveItem deletes a product line from the cart.
func (s *CartService) RemoveItem(cartID, productID string) (*models.Cart, error) {
	if err := s.cartRepo.RemoveItem(cartID, productID); err != nil {
		return nil, err
	}
	return s.refreshTotal(cartID)
}

// ClearCart removes all items from the cart.
func (s *CartService) ClearCart(cartID string) error {
	return s.cartRepo.ClearItems(cartID)
}

// refreshTotal reloads the cart, recomputes the total and persists it.
func (s *CartService) refreshTotal(cartID string) (*models.Cart, error) {
	cart, err := s.cartRepo.GetByID(cartID)
	if err != nil {
		return nil, err
	}
	cart.RecalculateTotal()
	if err := s.cartRepo.UpdateTotal(cart.ID, cart.TotalPrice); err != nil {
		return nil, fmt.Errorf("failed to update cart total: %w", err)
	}
	return cart, nil
}
