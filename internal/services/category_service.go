package services

import (
	"botmarket/internal/models"
	"botmarket/internal/repositories"
)

// CategoryService handles business logic for bot categories.
type CategoryService struct {
	categoryRepo repositories.CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(categoryRepo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{categoryRepo: categoryRepo}
}

// ListActive retrieves the active categories.
func (s *CategoryService) ListActive(skip, limit int) ([]models.Category, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	return s.categoryRepo.ListActive(skip, limit)
}
