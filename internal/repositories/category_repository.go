package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"botmarket/internal/models"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	Create(category *models.Category) error
	Get(id string) (*models.Category, error)
	List(offset, limit int) ([]models.Category, error)
	ListActive(offset, limit int) ([]models.Category, error)
	Remove(id string) (*models.Category, error)
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	CRUD[models.Category]
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{CRUD: NewCRUD[models.Category](db)}
}

// ListActive retrieves active categories in insertion order.
func (r *GORMCategoryRepository) ListActive(offset, limit int) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.
		Where("is_active = ?", true).
		Order("created_at").Offset(offset).Limit(limit).
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active categories: %w", err)
	}
	return categories, nil
}
