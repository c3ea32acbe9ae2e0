package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"botmarket/internal/models"
)

// Open connects to the database described by dsn. A DSN starting with
// "postgres://" or containing "host=" selects PostgreSQL; anything else
// is treated as a SQLite path (used for tests and local development).
// TranslateError is enabled so unique and foreign-key breaches surface
// as gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated on both dialects.
func Open(dsn string) (*gorm.DB, error) {
	cfg := &gorm.Config{TranslateError: true}

	var (
		db  *gorm.DB
		err error
	)
	if strings.HasPrefix(dsn, "postgres://") || strings.Contains(dsn, "host=") {
		db, err = gorm.Open(postgres.Open(dsn), cfg)
	} else {
		db, err = gorm.Open(sqlite.Open(dsn), cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite does not enforce foreign keys unless asked to.
	if db.Dialector.Name() == "sqlite" {
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}
	return db, nil
}

// Migrate creates or updates every table of the schema.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Bot{},
		&models.Order{},
		&models.OrderItem{},
		&models.BotExecution{},
		&models.ExecutionLog{},
		&models.BotReview{},
		&models.UserBotAccess{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// ILikeExpr returns a case-insensitive LIKE expression for the active
// dialect: PostgreSQL has ILIKE, SQLite needs LOWER() on both sides.
func ILikeExpr(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "sqlite" {
		return fmt.Sprintf("LOWER(%s) LIKE ?", column)
	}
	return fmt.Sprintf("%s ILIKE ?", column)
}

// ILikePattern returns the bind value matching ILikeExpr for a
// substring search on the given term.
func ILikePattern(db *gorm.DB, term string) string {
	pattern := "%" + term + "%"
	if db.Dialector.Name() == "sqlite" {
		return strings.ToLower(pattern)
	}
	return pattern
}
