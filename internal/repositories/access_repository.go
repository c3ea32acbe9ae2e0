package repositories

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"botmarket/internal/apperrors"
	"botmarket/internal/models"
)

// AccessRepository defines the interface for user-bot access grants.
type AccessRepository interface {
	Grant(access *models.UserBotAccess) error
	GetByUserAndBot(userID, botID string) (*models.UserBotAccess, error)
	ListByUser(userID string, offset, limit int) ([]models.UserBotAccess, error)
	HasActive(userID, botID string, now time.Time) (bool, error)
	WithTx(tx *gorm.DB) AccessRepository
}

// GORMAccessRepository is a GORM implementation of AccessRepository.
type GORMAccessRepository struct {
	CRUD[models.UserBotAccess]
}

// NewGORMAccessRepository creates a new instance of GORMAccessRepository.
func NewGORMAccessRepository(db *gorm.DB) *GORMAccessRepository {
	return &GORMAccessRepository{CRUD: NewCRUD[models.UserBotAccess](db)}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *GORMAccessRepository) WithTx(tx *gorm.DB) AccessRepository {
	return &GORMAccessRepository{CRUD: r.CRUD.WithTx(tx)}
}

// Grant upserts an access record. There is at most one per (user, bot)
// pair; re-purchasing refreshes the existing grant instead of failing
// on the unique index.
func (r *GORMAccessRepository) Grant(access *models.UserBotAccess) error {
	access.EnsureID()
	if access.GrantedAt.IsZero() {
		access.GrantedAt = time.Now()
	}
	err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "bot_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"access_type", "granted_at", "expires_at", "is_active", "updated_at",
		}),
	}).Create(access).Error
	if err != nil {
		return fmt.Errorf("failed to grant access: %w", translateError(err))
	}
	return nil
}

// GetByUserAndBot retrieves the grant for a (user, bot) pair.
func (r *GORMAccessRepository) GetByUserAndBot(userID, botID string) (*models.UserBotAccess, error) {
	var access models.UserBotAccess
	err := r.db.First(&access, "user_id = ? AND bot_id = ?", userID, botID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up access grant: %w", err)
	}
	return &access, nil
}

// ListByUser retrieves a user's access grants in insertion order.
func (r *GORMAccessRepository) ListByUser(userID string, offset, limit int) ([]models.UserBotAccess, error) {
	var grants []models.UserBotAccess
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at").Offset(offset).Limit(limit).
		Find(&grants).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list access grants for user %s: %w", userID, err)
	}
	return grants, nil
}

// HasActive reports whether the user holds a usable grant for the bot.
// Expiry is advisory: the stored is_active flag is not flipped when
// expires_at passes, so the check happens here at read time.
func (r *GORMAccessRepository) HasActive(userID, botID string, now time.Time) (bool, error) {
	access, err := r.GetByUserAndBot(userID, botID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return access.IsUsable(now), nil
}
