package repositories

import (
	"errors"
	"fmt"
	"math"

	"gorm.io/gorm"

	"botmarket/internal/apperrors"
	"botmarket/internal/models"
)

// ReviewRepository defines the interface for bot review data access.
type ReviewRepository interface {
	Create(review *models.BotReview) error
	Get(id string) (*models.BotReview, error)
	GetByUserAndBot(userID, botID string) (*models.BotReview, error)
	ListByBot(botID string, offset, limit int) ([]models.BotReview, error)
	RecomputeBotRating(botID string) error
	Remove(id string) (*models.BotReview, error)
	WithTx(tx *gorm.DB) ReviewRepository
}

// GORMReviewRepository is a GORM implementation of ReviewRepository.
type GORMReviewRepository struct {
	CRUD[models.BotReview]
}

// NewGORMReviewRepository creates a new instance of GORMReviewRepository.
func NewGORMReviewRepository(db *gorm.DB) *GORMReviewRepository {
	return &GORMReviewRepository{CRUD: NewCRUD[models.BotReview](db)}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *GORMReviewRepository) WithTx(tx *gorm.DB) ReviewRepository {
	return &GORMReviewRepository{CRUD: r.CRUD.WithTx(tx)}
}

// GetByUserAndBot retrieves the single review a user wrote for a bot.
func (r *GORMReviewRepository) GetByUserAndBot(userID, botID string) (*models.BotReview, error) {
	var review models.BotReview
	err := r.db.First(&review, "user_id = ? AND bot_id = ?", userID, botID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up review: %w", err)
	}
	return &review, nil
}

// ListByBot retrieves a bot's reviews in insertion order.
func (r *GORMReviewRepository) ListByBot(botID string, offset, limit int) ([]models.BotReview, error) {
	var reviews []models.BotReview
	err := r.db.
		Where("bot_id = ?", botID).
		Order("created_at").Offset(offset).Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews for bot %s: %w", botID, err)
	}
	return reviews, nil
}

// RecomputeBotRating refreshes the bot's denormalized rating aggregate
// from its reviews. Call inside the same transaction as the write that
// changed the reviews.
func (r *GORMReviewRepository) RecomputeBotRating(botID string) error {
	var agg struct {
		Avg   float64
		Count int64
	}
	err := r.db.Model(&models.BotReview{}).
		Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
		Where("bot_id = ?", botID).
		Scan(&agg).Error
	if err != nil {
		return fmt.Errorf("failed to aggregate ratings for bot %s: %w", botID, err)
	}

	err = r.db.Model(&models.Bot{}).
		Where("id = ?", botID).
		Updates(map[string]any{
			"rating_average": math.Round(agg.Avg*100) / 100,
			"rating_count":   agg.Count,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to store rating aggregate for bot %s: %w", botID, err)
	}
	return nil
}
