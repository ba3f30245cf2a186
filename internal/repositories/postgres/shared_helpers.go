package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/study-buddy-service/internal/repositories"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// pick returns tx when the caller supplied one
func pick(db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}

// paginate applies normalized limit/offset
func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}

// wrapNotFound turns gorm's not-found into the repository sentinel
func wrapNotFound(err error, entity string, id interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %v: %w", entity, id, repositories.ErrNotFound)
	}
	return fmt.Errorf("failed to get %s: %w", entity, err)
}

// checkAffected reports ErrNotFound when a write matched no rows
func checkAffected(result *gorm.DB, entity string, id interface{}) error {
	if result.Error != nil {
		return fmt.Errorf("failed to write %s: %w", entity, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("%s %v: %w", entity, id, repositories.ErrNotFound)
	}
	return nil
}
