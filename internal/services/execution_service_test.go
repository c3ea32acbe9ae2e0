package services_test

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"botmarket/internal/apperrors"
	"botmarket/internal/database"
	"botmarket/internal/models"
	"botmarket/internal/repositories"
	"botmarket/internal/schemas"
	"botmarket/internal/services"

	"github.com/stretchr/testify/assert"
)

func setupExecutionService(t *testing.T) (*services.ExecutionService, *gorm.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	service := services.NewExecutionService(
		db,
		repositories.NewGORMBotRepository(db),
		repositories.NewGORMExecutionRepository(db),
		repositories.NewGORMAccessRepository(db),
		nil,
	)
	return service, db
}

func seedExecutionFixtures(t *testing.T, db *gorm.DB, botActive bool) (*models.User, *models.Bot) {
	t.Helper()
	user := &models.User{Email: "runner@example.com", Username: "runner", PasswordHash: "hash", IsActive: true}
	if err := repositories.NewGORMUserRepository(db).Create(user); err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}
	bot := &models.Bot{Name: "Runner Bot", IsFree: true, IsActive: botActive}
	if err := repositories.NewGORMBotRepository(db).Create(bot); err != nil {
		t.Fatalf("Failed to create bot: %v", err)
	}
	return user, bot
}

func TestExecutionService_QueueRejectsInactiveBot(t *testing.T) {
	service, db := setupExecutionService(t)
	user, bot := seedExecutionFixtures(t, db, false)

	// An inactive bot reads as missing, same as on the download path
	_, err := service.QueueExecution(user, bot.ID, &schemas.ExecutionCreateRequest{})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	var count int64
	db.Model(&models.BotExecution{}).Count(&count)
	assert.Zero(t, count)
}

func TestExecutionService_UpdateStatusWritesLogWithStatus(t *testing.T) {
	service, db := setupExecutionService(t)
	user, bot := seedExecutionFixtures(t, db, true)

	execution, err := service.QueueExecution(user, bot.ID, &schemas.ExecutionCreateRequest{})
	assert.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusQueued, execution.ExecutionStatus)

	// Queueing already wrote the first log line
	var logCount int64
	db.Model(&models.ExecutionLog{}).Where("execution_id = ?", execution.ID).Count(&logCount)
	assert.Equal(t, int64(1), logCount)

	updated, err := service.UpdateStatus(user, execution.ID, &schemas.ExecutionStatusUpdateRequest{
		Status:      models.ExecutionStatusRunning,
		ContainerID: "c-42",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusRunning, updated.ExecutionStatus)
	assert.NotNil(t, updated.StartedAt)

	// Every status change lands together with its log line
	db.Model(&models.ExecutionLog{}).Where("execution_id = ?", execution.ID).Count(&logCount)
	assert.Equal(t, int64(2), logCount)

	// A rejected transition writes neither the status nor a log line
	_, err = service.UpdateStatus(user, execution.ID, &schemas.ExecutionStatusUpdateRequest{
		Status: models.ExecutionStatusQueued,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	db.Model(&models.ExecutionLog{}).Where("execution_id = ?", execution.ID).Count(&logCount)
	assert.Equal(t, int64(2), logCount)

	fresh, err := service.GetExecution(user, execution.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ExecutionStatusRunning, fresh.ExecutionStatus)
	assert.Len(t, fresh.Logs, 2)

	// Terminal states are frozen
	done, err := service.UpdateStatus(user, execution.ID, &schemas.ExecutionStatusUpdateRequest{
		Status: models.ExecutionStatusCompleted,
	})
	assert.NoError(t, err)
	assert.NotNil(t, done.CompletedAt)
	_, err = service.UpdateStatus(user, execution.ID, &schemas.ExecutionStatusUpdateRequest{
		Status: models.ExecutionStatusRunning,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
