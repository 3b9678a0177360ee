package repositories

import (
	"errors"
	"fmt"
	"strings"

	"storefront/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// likePattern escapes LIKE wildcards so the search term matches literally.
// The term is folded the same way as the *_folded columns written by Create;
// SQLite's LOWER() only folds ASCII letters, so it is not used here.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(models.Fold(term)) + "%"
}

// List retrieves the orders matching filter, newest first.
func (r *GORMOrderRepository) List(filter models.OrderFilter) ([]models.Order, error) {
	query := r.db.Model(&models.Order{}).Preload("Items", preloadItems)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if term := strings.TrimSpace(filter.Search); term != "" {
		pattern := likePattern(term)
		query = query.Where(
			`(customer_identity_folded LIKE ? ESCAPE '\' OR EXISTS (SELECT 1 FROM order_items WHERE order_items.order_id = orders.id AND order_items.name_folded LIKE ? ESCAPE '\'))`,
			pattern, pattern,
		)
	}

	orders := make([]models.Order, 0)
	if err := query.Order("placed_at DESC").Order("id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items", preloadItems).First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create inserts the order and its items in one transaction.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.IdentityFolded = models.Fold(order.CustomerIdentity)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		order.Items[i].Position = i
		order.Items[i].NameFolded = models.Fold(order.Items[i].Name)
	}
	if err := r.db.Create(order).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("order with ID %s: %w", order.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus writes the status column of a single order.
func (r *GORMOrderRepository) UpdateStatus(id string, status models.OrderStatus) (*models.Order, error) {
	res := r.db.Model(&models.Order{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update status of order %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
	}
	return r.GetByID(id)
}

// Delete physically removes the order and its items.
func (r *GORMOrderRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete items of order %s: %w", id, err)
		}
		res := tx.Delete(&models.Order{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete order: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("order with ID %s: %w", id, ErrNotFound)
		}
		return nil
	})
}
