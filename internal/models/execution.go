package models

import (
	"time"

	"gorm.io/datatypes"
)

// Execution status values. Transitions between them are enforced by the
// execution service, not by the database.
const (
	ExecutionStatusQueued    = "queued"
	ExecutionStatusRunning   = "running"
	ExecutionStatusCompleted = "completed"
	ExecutionStatusFailed    = "failed"
	ExecutionStatusCancelled = "cancelled"
)

// BotExecution records a single run of a bot for a user. Input and
// output payloads are opaque JSON; this system only stores execution
// state, it does not orchestrate containers.
type BotExecution struct {
	Base
	UserID *string `json:"user_id" gorm:"type:varchar(36);index"`
	BotID  *string `json:"bot_id" gorm:"type:varchar(36);index"`

	ExecutionStatus string         `json:"execution_status" gorm:"type:varchar(50);default:queued"`
	InputParameters datatypes.JSON `json:"input_parameters,omitempty"`
	OutputData      datatypes.JSON `json:"output_data,omitempty"`

	ExecutionTime int    `json:"execution_time"` // seconds
	ErrorMessage  string `json:"error_message" gorm:"type:text"`
	ContainerID   string `json:"container_id" gorm:"type:varchar(255)"`

	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	Logs []ExecutionLog `json:"logs,omitempty" gorm:"foreignKey:ExecutionID;constraint:OnDelete:CASCADE"`
}

// ExecutionLog is one append-only log line of an execution. Log rows
// are destroyed with their execution and never updated.
type ExecutionLog struct {
	Base
	ExecutionID string    `json:"execution_id" gorm:"type:varchar(36);not null;index"`
	LogLevel    string    `json:"log_level" gorm:"type:varchar(20);default:INFO"`
	Message     string    `json:"message" gorm:"type:text;not null"`
	Timestamp   time.Time `json:"timestamp"`
}
