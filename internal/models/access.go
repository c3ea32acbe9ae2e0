package models

import "time"

// Access grant types.
const (
	AccessTypePurchased    = "purchased"
	AccessTypeTrial        = "trial"
	AccessTypeSubscription = "subscription"
	AccessTypeGift         = "gift"
)

// UserBotAccess permits one user to use one bot, with an optional
// expiry. A nil ExpiresAt means permanent access. Expiry is advisory:
// a past ExpiresAt does not flip IsActive, readers must call IsUsable.
// Grants are destroyed with either side of the pair.
type UserBotAccess struct {
	Base
	UserID string `json:"user_id" gorm:"type:varchar(36);not null;uniqueIndex:uniq_user_bot_access"`
	BotID  string `json:"bot_id" gorm:"type:varchar(36);not null;uniqueIndex:uniq_user_bot_access"`

	AccessType string     `json:"access_type" gorm:"type:varchar(50);default:purchased"`
	GrantedAt  time.Time  `json:"granted_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	IsActive   bool       `json:"is_active"`
}

// IsUsable reports whether the grant is active and not past its expiry
// at the given instant.
func (a *UserBotAccess) IsUsable(now time.Time) bool {
	if !a.IsActive {
		return false
	}
	if a.ExpiresAt != nil && a.ExpiresAt.Before(now) {
		return false
	}
	return true
}
