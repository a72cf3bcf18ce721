package repositories

import (
	"errors"
	"fmt"
	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves all products from the database.
func (r *GORMProductRepository) GetAll() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	product.IsAvailable = product.StockQuantity > 0
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database. Stock fields are
// intentionally written as-is here; stock changes must go through the
// dedicated stock primitives below.
func (r *GORMProductRepository) Update(product *models.Product) error {
	product.IsAvailable = product.StockQuantity > 0
	res := r.db.Save(product) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// GORM's Save doesn't return ErrRecordNotFound if no rows affected
		// for an update, so we check RowsAffected.
		return fmt.Errorf("product with ID %s for update: %w", product.ID, ErrProductNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s for deletion: %w", id, ErrProductNotFound)
	}
	return nil
}

// DecrementStock performs a conditional decrement in a single UPDATE. The
// WHERE guard is what makes concurrent reservations safe: two requests
// racing over the last units cannot both pass, because the losing statement
// affects zero rows.
func (r *GORMProductRepository) DecrementStock(id string, quantity int) (*models.Product, error) {
	res := r.db.Model(&models.Product{}).
		Where("id = ? AND stock_quantity >= ?", id, quantity).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity - ?", quantity),
			"is_available":   gorm.Expr("stock_quantity - ? > 0", quantity),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to decrement stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		// Distinguish a missing product from a failed guard.
		if _, err := r.GetByID(id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("product %s: %w", id, ErrInsufficientStock)
	}
	return r.GetByID(id)
}

// IncrementStock adds quantity back to the product's stock in a single UPDATE.
func (r *GORMProductRepository) IncrementStock(id string, quantity int) (*models.Product, error) {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": gorm.Expr("stock_quantity + ?", quantity),
			"is_available":   gorm.Expr("stock_quantity + ? > 0", quantity),
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to increment stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return r.GetByID(id)
}

// SetStock overwrites the product's stock with an absolute quantity.
func (r *GORMProductRepository) SetStock(id string, quantity int) (*models.Product, error) {
	res := r.db.Model(&models.Product{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock_quantity": quantity,
			"is_available":   quantity > 0,
		})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to set stock for product %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrProductNotFound)
	}
	return r.GetByID(id)
}

// FindLowStock retrieves products with positive stock at or below the threshold.
func (r *GORMProductRepository) FindLowStock(threshold int) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("stock_quantity > 0 AND stock_quantity <= ?", threshold).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find low stock products: %w", err)
	}
	return products, nil
}

// FindOutOfStock retrieves products with no remaining stock.
func (r *GORMProductRepository) FindOutOfStock() ([]models.Product, error) {
	var products []models.Product
	if err := r.db.Where("stock_quantity <= 0").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to find out of stock products: %w", err)
	}
	return products, nil
}
