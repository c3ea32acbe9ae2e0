package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"botmarket/internal/apperrors"
	"botmarket/internal/models"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	CRUD[models.User]
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{CRUD: NewCRUD[models.User](db)}
}

// GetByID retrieves a user by their ID.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	return r.Get(id)
}

// GetByUsername retrieves a user by their username, exact match as stored.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	return r.getBy("username = ?", username)
}

// GetByEmail retrieves a user by their email, exact match as stored.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	return r.getBy("email = ?", email)
}

func (r *GORMUserRepository) getBy(query string, arg string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &user, nil
}

// Remove deletes a user together with the rows they own: access grants,
// reviews, executions (their logs follow by foreign-key cascade) and
// orders (likewise their items). Runs as one transaction so a partial
// cleanup can never be observed.
func (r *GORMUserRepository) Remove(id string) (*models.User, error) {
	user, err := r.Get(id)
	if err != nil {
		return nil, err
	}

	err = r.db.Transaction(func(tx *gorm.DB) error {
		owned := []any{
			&models.UserBotAccess{},
			&models.BotReview{},
			&models.BotExecution{},
			&models.Order{},
		}
		for _, model := range owned {
			if err := tx.Where("user_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to delete user %s: %w", id, translateError(err))
	}
	return user, nil
}
