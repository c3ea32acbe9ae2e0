package repositories

import "botmarket/internal/models"

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	List(offset, limit int) ([]models.User, error)
	Update(user *models.User, fields map[string]any) (*models.User, error)
	Remove(id string) (*models.User, error)
}
