package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"botmarket/internal/apperrors"
	"botmarket/internal/models"
	"botmarket/internal/repositories"
	"botmarket/internal/schemas"
)

// ReviewService handles bot reviews and keeps the bots' denormalized
// rating aggregates in sync with them.
type ReviewService struct {
	db         *gorm.DB
	botRepo    repositories.BotRepository
	reviewRepo repositories.ReviewRepository
	accessRepo repositories.AccessRepository
}

// NewReviewService creates a new ReviewService.
func NewReviewService(db *gorm.DB, botRepo repositories.BotRepository, reviewRepo repositories.ReviewRepository, accessRepo repositories.AccessRepository) *ReviewService {
	return &ReviewService{db: db, botRepo: botRepo, reviewRepo: reviewRepo, accessRepo: accessRepo}
}

// CreateReview writes a user's review of a bot and recomputes the
// bot's rating aggregate in the same transaction. A second review for
// the same (user, bot) pair is rejected by the composite unique index.
func (s *ReviewService) CreateReview(user *models.User, botID string, req *schemas.ReviewCreateRequest) (*models.BotReview, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, fmt.Errorf("rating must be between 1 and 5: %w", apperrors.ErrValidation)
	}
	if _, err := s.botRepo.Get(botID); err != nil {
		return nil, err
	}

	verified := false
	if access, err := s.accessRepo.GetByUserAndBot(user.ID, botID); err == nil {
		verified = access.AccessType == models.AccessTypePurchased
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	review := &models.BotReview{
		UserID:             &user.ID,
		BotID:              &botID,
		Rating:             req.Rating,
		ReviewText:         req.ReviewText,
		IsVerifiedPurchase: verified,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		reviews := s.reviewRepo.WithTx(tx)
		if err := reviews.Create(review); err != nil {
			return err
		}
		return reviews.RecomputeBotRating(botID)
	})
	if err != nil {
		return nil, err
	}
	return review, nil
}

// ListReviews retrieves a bot's reviews.
func (s *ReviewService) ListReviews(botID string, skip, limit int) ([]models.BotReview, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	if _, err := s.botRepo.Get(botID); err != nil {
		return nil, err
	}
	return s.reviewRepo.ListByBot(botID, skip, limit)
}
