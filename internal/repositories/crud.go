package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"botmarket/internal/apperrors"
)

// CRUD implements the generic create/read/update/delete operations every
// entity repository shares. Concrete repositories embed it and add their
// own queries on top.
//
// Operations run on whatever *gorm.DB the repository was built with; for
// multi-step writes callers pass a transaction via WithTx so the request
// scope owns commit and rollback.
type CRUD[T any] struct {
	db *gorm.DB
}

// NewCRUD creates the generic repository over the given connection.
func NewCRUD[T any](db *gorm.DB) CRUD[T] {
	return CRUD[T]{db: db}
}

// WithTx returns a copy of the repository bound to the given transaction.
func (r CRUD[T]) WithTx(tx *gorm.DB) CRUD[T] {
	return CRUD[T]{db: tx}
}

// Get retrieves a record by its ID.
func (r CRUD[T]) Get(id string) (*T, error) {
	var entity T
	if err := r.db.First(&entity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("record %s: %w", id, apperrors.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get record %s: %w", id, err)
	}
	return &entity, nil
}

// List retrieves records in insertion order with offset/limit pagination.
func (r CRUD[T]) List(offset, limit int) ([]T, error) {
	var entities []T
	err := r.db.Order("created_at").Offset(offset).Limit(limit).Find(&entities).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return entities, nil
}

// Create persists a new record, assigning a UUID if none is set.
// Unique and foreign-key breaches come back as ErrConstraintViolation.
func (r CRUD[T]) Create(entity *T) error {
	if ider, ok := any(entity).(interface{ EnsureID() }); ok {
		ider.EnsureID()
	}
	if err := r.db.Create(entity).Error; err != nil {
		return fmt.Errorf("failed to create record: %w", translateError(err))
	}
	return nil
}

// Update applies a partial update: only the named fields change, the
// rest stay untouched. Names that do not correspond to a column of the
// model are silently dropped, and an explicit null value is treated the
// same as any other value.
func (r CRUD[T]) Update(entity *T, fields map[string]any) (*T, error) {
	stmt := &gorm.Statement{DB: r.db}
	if err := stmt.Parse(entity); err != nil {
		return nil, fmt.Errorf("failed to parse model schema: %w", err)
	}

	updates := make(map[string]any, len(fields))
	for name, value := range fields {
		if f := stmt.Schema.LookUpField(name); f != nil && f.DBName != "" {
			updates[f.DBName] = value
		}
	}
	if len(updates) == 0 {
		return entity, nil
	}

	if err := r.db.Model(entity).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update record: %w", translateError(err))
	}
	return entity, nil
}

// Remove physically deletes a record by ID and returns it. There is no
// soft delete; dependent rows follow the schema's cascade rules.
func (r CRUD[T]) Remove(id string) (*T, error) {
	entity, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	if err := r.db.Delete(entity).Error; err != nil {
		return nil, fmt.Errorf("failed to delete record %s: %w", id, translateError(err))
	}
	return entity, nil
}

// translateError maps GORM errors onto the application taxonomy.
// TranslateError is enabled on the connection, so constraint breaches
// arrive as gorm.ErrDuplicatedKey / gorm.ErrForeignKeyViolated on both
// PostgreSQL and SQLite.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperrors.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey), errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", apperrors.ErrConstraintViolation, err)
	default:
		return err
	}
}
