package repository

import (
	"context"
	"errors"
	"strings"

	"talenta/internal/models"
	"talenta/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DefaultPageSize and MaxPageSize bound every list query.
	DefaultPageSize = 20
	MaxPageSize     = 50
)

// ClampLimit applies the default page size and the hard cap.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// translateError maps gorm sentinel errors onto AppErrors.
func translateError(err error, resource string, id interface{}) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.NewNotFoundError(resource, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return models.NewConflictError(resource + " already exists")
	default:
		return models.NewInternalError(err)
	}
}

// summaryPreload limits an embedded profile to its public summary columns.
func summaryPreload(db *gorm.DB) *gorm.DB {
	return db.Select(models.SummaryColumns)
}

// insertIgnore inserts row unless it collides with a unique index and
// reports whether a new row was written.
func insertIgnore(db *gorm.DB, row interface{}) (bool, error) {
	res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(row)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a case-insensitive LIKE pattern matching q anywhere.
// Use it with "LOWER(col) LIKE ? ESCAPE '\'".
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(q))) + "%"
}

// logInternal records a failed statement and hides it behind an internal AppError.
func logInternal(ctx context.Context, log *observability.RepoLogger, op string, err error) error {
	log.LogError(ctx, err, op)
	return models.NewInternalError(err)
}
