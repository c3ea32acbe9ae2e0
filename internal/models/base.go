package models

import (
	"time"

	"github.com/google/uuid"
)

// Base holds the fields every table shares. The ID is a UUID string
// assigned by the repository layer on create; the timestamps are
// maintained by GORM on every write.
type Base struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EnsureID assigns a fresh UUID if the record has none yet.
func (b *Base) EnsureID() {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}
}

// GetID returns the record's identifier.
func (b *Base) GetID() string {
	return b.ID
}
