package models

// User represents a marketplace account.
//
// PasswordHash is excluded from JSON so no response can ever carry it.
// Orders, executions and reviews keep a nullable reference back to the
// user (SET NULL on delete) so historical rows survive; removing a user
// through the repository deletes those children explicitly.
type User struct {
	Base
	Email        string `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	Username     string `json:"username" gorm:"uniqueIndex;type:varchar(50);not null" validate:"required,min=3,max=50"`
	PasswordHash string `json:"-" gorm:"type:varchar(255);not null"`
	FirstName    string `json:"first_name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`
	LastName     string `json:"last_name" gorm:"type:varchar(100)" validate:"omitempty,max=100"`

	// No DB defaults on the flags: a default tag makes GORM drop the
	// zero value from the INSERT, so a deactivated account could not
	// be stored. Registration sets IsActive explicitly.
	IsActive         bool   `json:"is_active"`
	IsVerified       bool   `json:"is_verified"`
	SubscriptionTier string `json:"subscription_tier" gorm:"type:varchar(50);default:free"`

	Orders     []Order         `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Executions []BotExecution  `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	Reviews    []BotReview     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL"`
	BotAccess  []UserBotAccess `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
