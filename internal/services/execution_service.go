package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"botmarket/internal/apperrors"
	"botmarket/internal/models"
	"botmarket/internal/repositories"
	"botmarket/internal/schemas"
)

// executionTransitions is the set of allowed status moves. Completed,
// failed and cancelled are terminal. The database stores plain strings;
// this table is the only gate.
var executionTransitions = map[string][]string{
	models.ExecutionStatusQueued:  {models.ExecutionStatusRunning, models.ExecutionStatusCancelled},
	models.ExecutionStatusRunning: {models.ExecutionStatusCompleted, models.ExecutionStatusFailed, models.ExecutionStatusCancelled},
}

// ExecutionService records bot runs and their logs. It stores execution
// state only; nothing here starts containers or schedules work.
type ExecutionService struct {
	db            *gorm.DB
	botRepo       repositories.BotRepository
	executionRepo repositories.ExecutionRepository
	accessRepo    repositories.AccessRepository
	publisher     EventPublisher
}

// NewExecutionService creates a new ExecutionService.
func NewExecutionService(db *gorm.DB, botRepo repositories.BotRepository, executionRepo repositories.ExecutionRepository, accessRepo repositories.AccessRepository, publisher EventPublisher) *ExecutionService {
	return &ExecutionService{
		db:            db,
		botRepo:       botRepo,
		executionRepo: executionRepo,
		accessRepo:    accessRepo,
		publisher:     publisher,
	}
}

// QueueExecution creates a queued execution for the user. Paid bots
// require a usable access grant. The first log line and the execution
// row are written together; the execution.queued event follows the
// commit.
func (s *ExecutionService) QueueExecution(user *models.User, botID string, req *schemas.ExecutionCreateRequest) (*models.BotExecution, error) {
	bot, err := s.botRepo.Get(botID)
	if err != nil {
		return nil, err
	}
	// An inactive bot is hidden from the catalogue, so it reads as
	// missing here too.
	if !bot.IsActive {
		return nil, fmt.Errorf("bot %s is not available: %w", botID, apperrors.ErrNotFound)
	}
	if !bot.IsFree {
		ok, err := s.accessRepo.HasActive(user.ID, botID, time.Now())
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("no access to bot %s: %w", botID, apperrors.ErrForbidden)
		}
	}

	execution := &models.BotExecution{
		UserID:          &user.ID,
		BotID:           &botID,
		ExecutionStatus: models.ExecutionStatusQueued,
		InputParameters: datatypes.JSON(req.InputParameters),
	}
	err = s.db.Transaction(func(tx *gorm.DB) error {
		executions := s.executionRepo.WithTx(tx)
		if err := executions.Create(execution); err != nil {
			return err
		}
		return executions.AppendLog(&models.ExecutionLog{
			ExecutionID: execution.ID,
			LogLevel:    "INFO",
			Message:     fmt.Sprintf("execution queued for bot %s", bot.Name),
			Timestamp:   time.Now(),
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent("execution.queued", map[string]interface{}{
		"execution_id": execution.ID,
		"bot_id":       botID,
		"user_id":      user.ID,
	})
	return execution, nil
}

// UpdateStatus moves one of the user's executions along the transition
// table, stamping the timing fields as it goes.
func (s *ExecutionService) UpdateStatus(user *models.User, id string, req *schemas.ExecutionStatusUpdateRequest) (*models.BotExecution, error) {
	execution, err := s.ownedExecution(user, id)
	if err != nil {
		return nil, err
	}

	if !transitionAllowed(execution.ExecutionStatus, req.Status) {
		return nil, fmt.Errorf("cannot move execution from %s to %s: %w",
			execution.ExecutionStatus, req.Status, apperrors.ErrValidation)
	}

	now := time.Now()
	fields := map[string]any{"execution_status": req.Status}
	switch req.Status {
	case models.ExecutionStatusRunning:
		fields["started_at"] = now
		if req.ContainerID != "" {
			fields["container_id"] = req.ContainerID
		}
	case models.ExecutionStatusCompleted, models.ExecutionStatusFailed, models.ExecutionStatusCancelled:
		fields["completed_at"] = now
		if execution.StartedAt != nil {
			fields["execution_time"] = int(now.Sub(*execution.StartedAt).Seconds())
		}
		if len(req.OutputData) > 0 {
			fields["output_data"] = datatypes.JSON(req.OutputData)
		}
		if req.Status == models.ExecutionStatusFailed {
			fields["error_message"] = req.ErrorMessage
		}
	}

	// The status change and its log line land together or not at all,
	// same as the create path.
	var updated *models.BotExecution
	err = s.db.Transaction(func(tx *gorm.DB) error {
		executions := s.executionRepo.WithTx(tx)
		updated, err = executions.Update(execution, fields)
		if err != nil {
			return err
		}
		return executions.AppendLog(&models.ExecutionLog{
			ExecutionID: execution.ID,
			LogLevel:    "INFO",
			Message:     fmt.Sprintf("status changed to %s", req.Status),
			Timestamp:   now,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// AppendLog records one log line on the user's execution.
func (s *ExecutionService) AppendLog(user *models.User, id, level, message string) (*models.ExecutionLog, error) {
	if message == "" {
		return nil, fmt.Errorf("log message is required: %w", apperrors.ErrValidation)
	}
	if _, err := s.ownedExecution(user, id); err != nil {
		return nil, err
	}
	if level == "" {
		level = "INFO"
	}
	entry := &models.ExecutionLog{
		ExecutionID: id,
		LogLevel:    level,
		Message:     message,
		Timestamp:   time.Now(),
	}
	if err := s.executionRepo.AppendLog(entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetExecution retrieves one of the user's executions, logs included.
func (s *ExecutionService) GetExecution(user *models.User, id string) (*models.BotExecution, error) {
	if _, err := s.ownedExecution(user, id); err != nil {
		return nil, err
	}
	return s.executionRepo.GetWithLogs(id)
}

// ListExecutions retrieves the user's executions.
func (s *ExecutionService) ListExecutions(user *models.User, skip, limit int) ([]models.BotExecution, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 || limit > maxListLimit {
		limit = defaultListLimit
	}
	return s.executionRepo.ListByUser(user.ID, skip, limit)
}

func (s *ExecutionService) ownedExecution(user *models.User, id string) (*models.BotExecution, error) {
	execution, err := s.executionRepo.Get(id)
	if err != nil {
		return nil, err
	}
	if execution.UserID == nil || *execution.UserID != user.ID {
		return nil, fmt.Errorf("execution %s belongs to another user: %w", id, apperrors.ErrForbidden)
	}
	return execution, nil
}

func transitionAllowed(from, to string) bool {
	for _, allowed := range executionTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *ExecutionService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", routingKey, err)
		return
	}
	if err := s.publisher.Publish("marketplace", routingKey, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
