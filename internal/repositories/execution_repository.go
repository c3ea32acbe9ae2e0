package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"botmarket/internal/apperrors"
	"botmarket/internal/models"
)

// ExecutionRepository defines the interface for bot execution data
// access. Logs are append-only: they can be added and read, never
// updated, and they disappear with their execution.
type ExecutionRepository interface {
	Create(execution *models.BotExecution) error
	Get(id string) (*models.BotExecution, error)
	GetWithLogs(id string) (*models.BotExecution, error)
	ListByUser(userID string, offset, limit int) ([]models.BotExecution, error)
	Update(execution *models.BotExecution, fields map[string]any) (*models.BotExecution, error)
	AppendLog(log *models.ExecutionLog) error
	Remove(id string) (*models.BotExecution, error)
	WithTx(tx *gorm.DB) ExecutionRepository
}

// GORMExecutionRepository is a GORM implementation of ExecutionRepository.
type GORMExecutionRepository struct {
	CRUD[models.BotExecution]
}

// NewGORMExecutionRepository creates a new instance of GORMExecutionRepository.
func NewGORMExecutionRepository(db *gorm.DB) *GORMExecutionRepository {
	return &GORMExecutionRepository{CRUD: NewCRUD[models.BotExecution](db)}
}

// WithTx returns a copy of the repository bound to the transaction.
func (r *GORMExecutionRepository) WithTx(tx *gorm.DB) ExecutionRepository {
	return &GORMExecutionRepository{CRUD: r.CRUD.WithTx(tx)}
}

// GetWithLogs retrieves an execution with its log lines preloaded in
// timestamp order.
func (r *GORMExecutionRepository) GetWithLogs(id string) (*models.BotExecution, error) {
	var execution models.BotExecution
	err := r.db.
		Preload("Logs", func(db *gorm.DB) *gorm.DB { return db.Order("timestamp") }).
		First(&execution, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("execution %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get execution %s: %w", id, err)
	}
	return &execution, nil
}

// ListByUser retrieves a user's executions in insertion order.
func (r *GORMExecutionRepository) ListByUser(userID string, offset, limit int) ([]models.BotExecution, error) {
	var executions []models.BotExecution
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at").Offset(offset).Limit(limit).
		Find(&executions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list executions for user %s: %w", userID, err)
	}
	return executions, nil
}

// AppendLog adds one log line to an execution.
func (r *GORMExecutionRepository) AppendLog(log *models.ExecutionLog) error {
	log.EnsureID()
	if err := r.db.Create(log).Error; err != nil {
		return fmt.Errorf("failed to append execution log: %w", translateError(err))
	}
	return nil
}
