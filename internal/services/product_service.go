package services

import (
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// ProductService handles business logic related to products.
type ProductService struct {
	repo      repositories.ProductRepository
	ruleCheck *BusinessRuleValidator
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, ruleCheck *BusinessRuleValidator) *ProductService {
	return &ProductService{
		repo:      repo,
		ruleCheck: ruleCheck,
	}
}

// GetAllProducts retrieves all products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.GetAll()
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct validates and creates a new product.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.ruleCheck.ValidateProductData(product); err != nil {
		return err
	}
	if product.Price.IsNegative() {
		return fmt.Errorf("product price cannot be negative")
	}
	if product.StockQuantity < 0 {
		return fmt.Errorf("product stock cannot be negative")
	}
	return s.repo.Create(product)
}

// UpdateProduct validates and updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := s.ruleCheck.ValidateProductData(product); err != nil {
		return err
	}
	if product.Price.IsNegative() {
		return fmt.Errorf("product price cannot be negative")
	}
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}
