package models

// Category groups bots for browsing. Bots and categories are linked
// through the pure bot_categories junction table.
type Category struct {
	Base
	Name        string `json:"name" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,min=2,max=100"`
	Description string `json:"description" gorm:"type:text"`
	IconURL     string `json:"icon_url" gorm:"type:varchar(255)"`
	IsActive    bool   `json:"is_active"`

	Bots []Bot `json:"-" gorm:"many2many:bot_categories"`
}
