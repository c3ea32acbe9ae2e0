package models

// Bot represents an automation script listed in the marketplace.
//
// RatingAverage and RatingCount are denormalized aggregates recomputed
// from bot_reviews whenever a review is written. References from
// historical rows (order items, executions, reviews) are nulled when a
// bot is deleted; access grants and category links are removed with it.
type Bot struct {
	Base
	Name                string  `json:"name" gorm:"type:varchar(255);not null;index" validate:"required,min=3,max=255"`
	Description         string  `json:"description" gorm:"type:text" validate:"omitempty,max=2000"`
	DetailedDescription string  `json:"detailed_description" gorm:"type:text"`
	Price               float64 `json:"price" gorm:"type:decimal(10,2);not null" validate:"gte=0"`
	IsFree              bool    `json:"is_free" gorm:"default:false"`

	DifficultyLevel       string `json:"difficulty_level" gorm:"type:varchar(50);default:beginner"`
	RuntimeVersion        string `json:"runtime_version" gorm:"type:varchar(20)"`
	ExecutionTimeEstimate int    `json:"execution_time_estimate"`
	DockerImage           string `json:"docker_image" gorm:"type:varchar(255)"`
	GithubRepoURL         string `json:"github_repo_url" gorm:"type:varchar(255)"`
	DemoVideoURL          string `json:"demo_video_url" gorm:"type:varchar(255)"`
	ThumbnailURL          string `json:"thumbnail_url" gorm:"type:varchar(255)"`

	// No DB default: a default tag makes GORM drop the zero value from
	// the INSERT, and an explicit false must survive the round trip.
	IsActive      bool    `json:"is_active"`
	DownloadCount int     `json:"download_count" gorm:"default:0"`
	RatingAverage float64 `json:"rating_average" gorm:"type:decimal(3,2);default:0"`
	RatingCount   int     `json:"rating_count" gorm:"default:0"`

	Categories []Category      `json:"categories,omitempty" gorm:"many2many:bot_categories;constraint:OnDelete:CASCADE"`
	OrderItems []OrderItem     `json:"-" gorm:"foreignKey:BotID;constraint:OnDelete:SET NULL"`
	Executions []BotExecution  `json:"-" gorm:"foreignKey:BotID;constraint:OnDelete:SET NULL"`
	Reviews    []BotReview     `json:"-" gorm:"foreignKey:BotID;constraint:OnDelete:SET NULL"`
	UserAccess []UserBotAccess `json:"-" gorm:"foreignKey:BotID;constraint:OnDelete:CASCADE"`
}
