package models

// BotReview is a user's rating of a bot. The composite unique index
// allows at most one review per (user, bot) pair; both references are
// nulled if the user or bot is later deleted so the review survives as
// a historical record.
type BotReview struct {
	Base
	UserID *string `json:"user_id" gorm:"type:varchar(36);uniqueIndex:uniq_user_bot_review"`
	BotID  *string `json:"bot_id" gorm:"type:varchar(36);uniqueIndex:uniq_user_bot_review"`

	Rating             int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5" validate:"required,min=1,max=5"`
	ReviewText         string `json:"review_text" gorm:"type:text" validate:"omitempty,max=5000"`
	IsVerifiedPurchase bool   `json:"is_verified_purchase" gorm:"default:false"`
}
