package repositories

import (
	"storefront/internal/models"
)

// OrderRepository defines the interface for order data access.
type OrderRepository interface {
	// List returns the orders matching filter, most recently placed first.
	List(filter models.OrderFilter) ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	// UpdateStatus writes only the status column and returns the updated order.
	UpdateStatus(id string, status models.OrderStatus) (*models.Order, error)
	Delete(id string) error
}
