package repositories

import (
	"gorm.io/gorm"

	"botmarket/internal/models"
)

// BotRepository defines the interface for bot data access. The four
// list variants are mutually exclusive filter modes; the caller picks
// exactly one per call.
type BotRepository interface {
	Create(bot *models.Bot) error
	Get(id string) (*models.Bot, error)
	List(offset, limit int) ([]models.Bot, error)
	Update(bot *models.Bot, fields map[string]any) (*models.Bot, error)
	Remove(id string) (*models.Bot, error)

	ListActive(offset, limit int) ([]models.Bot, error)
	ListByCategory(categoryID string, offset, limit int) ([]models.Bot, error)
	Search(query string, offset, limit int) ([]models.Bot, error)
	ListFree(offset, limit int) ([]models.Bot, error)

	IncrementDownloads(id string) error

	WithTx(tx *gorm.DB) BotRepository
}
