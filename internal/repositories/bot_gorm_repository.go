package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"botmarket/internal/database"
	"botmarket/internal/models"
)

// GORMBotRepository is a GORM implementation of BotRepository.
type GORMBotRepository struct {
	CRUD[models.Bot]
}

// NewGORMBotRepository creates a new instance of GORMBotRepository.
func NewGORMBotRepository(db *gorm.DB) *GORMBotRepository {
	return &GORMBotRepository{CRUD: NewCRUD[models.Bot](db)}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *GORMBotRepository) WithTx(tx *gorm.DB) BotRepository {
	return &GORMBotRepository{CRUD: r.CRUD.WithTx(tx)}
}

// ListActive retrieves active bots in insertion order.
func (r *GORMBotRepository) ListActive(offset, limit int) ([]models.Bot, error) {
	var bots []models.Bot
	err := r.db.
		Where("is_active = ?", true).
		Order("created_at").Offset(offset).Limit(limit).
		Find(&bots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active bots: %w", err)
	}
	return bots, nil
}

// ListByCategory retrieves active bots linked to the category through
// the bot_categories junction table.
func (r *GORMBotRepository) ListByCategory(categoryID string, offset, limit int) ([]models.Bot, error) {
	var bots []models.Bot
	err := r.db.
		Joins("JOIN bot_categories ON bot_categories.bot_id = bots.id").
		Where("bot_categories.category_id = ? AND bots.is_active = ?", categoryID, true).
		Order("bots.created_at").Offset(offset).Limit(limit).
		Find(&bots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list bots for category %s: %w", categoryID, err)
	}
	return bots, nil
}

// Search retrieves active bots whose name or description contains the
// query, case-insensitively.
func (r *GORMBotRepository) Search(query string, offset, limit int) ([]models.Bot, error) {
	pattern := database.ILikePattern(r.db, query)
	var bots []models.Bot
	err := r.db.
		Where(r.db.
			Where(database.ILikeExpr(r.db, "name"), pattern).
			Or(database.ILikeExpr(r.db, "description"), pattern)).
		Where("is_active = ?", true).
		Order("created_at").Offset(offset).Limit(limit).
		Find(&bots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search bots: %w", err)
	}
	return bots, nil
}

// ListFree retrieves bots that are both free and active.
func (r *GORMBotRepository) ListFree(offset, limit int) ([]models.Bot, error) {
	var bots []models.Bot
	err := r.db.
		Where("is_free = ? AND is_active = ?", true, true).
		Order("created_at").Offset(offset).Limit(limit).
		Find(&bots).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list free bots: %w", err)
	}
	return bots, nil
}

// IncrementDownloads bumps the bot's download counter atomically.
func (r *GORMBotRepository) IncrementDownloads(id string) error {
	res := r.db.Model(&models.Bot{}).
		Where("id = ?", id).
		UpdateColumn("download_count", gorm.Expr("download_count + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to count download for bot %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("bot %s: %w", id, translateError(gorm.ErrRecordNotFound))
	}
	return nil
}
