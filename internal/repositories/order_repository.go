package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"botmarket/internal/apperrors"
	"botmarket/internal/models"
)

// OrderRepository defines the interface for order data access. Orders
// are created inside the service's transaction together with their
// items and the resulting access grants.
type OrderRepository interface {
	Create(order *models.Order) error
	GetWithItems(id string) (*models.Order, error)
	ListByUser(userID string, offset, limit int) ([]models.Order, error)
	Remove(id string) (*models.Order, error)
	WithTx(tx *gorm.DB) OrderRepository
}

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	CRUD[models.Order]
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{CRUD: NewCRUD[models.Order](db)}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *GORMOrderRepository) WithTx(tx *gorm.DB) OrderRepository {
	return &GORMOrderRepository{CRUD: r.CRUD.WithTx(tx)}
}

// Create persists an order together with its items. Item IDs are
// assigned here so the whole tree goes in with one insert batch.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	order.EnsureID()
	for i := range order.Items {
		order.Items[i].EnsureID()
		order.Items[i].OrderID = order.ID
	}
	if err := r.db.Create(order).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", translateError(err))
	}
	return nil
}

// GetWithItems retrieves an order with its line items preloaded.
func (r *GORMOrderRepository) GetWithItems(id string) (*models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order %s: %w", id, err)
	}
	return &order, nil
}

// ListByUser retrieves a user's orders, items included, in insertion order.
func (r *GORMOrderRepository) ListByUser(userID string, offset, limit int) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at").Offset(offset).Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list orders for user %s: %w", userID, err)
	}
	return orders, nil
}
