package repositories

import "storefront/internal/models"

// CustomerRepository defines the interface for customer account data access.
type CustomerRepository interface {
	Create(customer *models.Customer) error
	GetByUsername(username string) (*models.Customer, error)
	GetByEmail(email string) (*models.Customer, error)
	GetByID(id string) (*models.Customer, error)
}
