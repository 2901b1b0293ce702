package database

import (
	"context"
	"fmt"
	"log/slog"

	"talenta/internal/middleware"

	"gorm.io/gorm"
)

// schemaStatements run after AutoMigrate. Both postgres and sqlite accept
// them, so tests exercise the same statements as production.
var schemaStatements = []struct {
	name string
	sql  string
}{
	{
		name: "idx_posts_public_created",
		sql: `CREATE INDEX IF NOT EXISTS idx_posts_public_created
			ON posts (created_at DESC)
			WHERE privacy_setting = 'public' AND deleted_at IS NULL`,
	},
	{
		name: "idx_posts_public_skill_created",
		sql: `CREATE INDEX IF NOT EXISTS idx_posts_public_skill_created
			ON posts (skill_category, created_at DESC)
			WHERE privacy_setting = 'public' AND deleted_at IS NULL`,
	},
	{
		name: "idx_messages_pair_created",
		sql: `CREATE INDEX IF NOT EXISTS idx_messages_pair_created
			ON messages (sender_id, receiver_id, created_at)`,
	},
}

// Migrate brings the schema up to date: AutoMigrate for tables and unique
// pairs, then the feed and conversation indexes.
func Migrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	for _, stmt := range schemaStatements {
		if err := db.WithContext(ctx).Exec(stmt.sql).Error; err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
		middleware.Logger.Debug("schema statement applied", slog.String("name", stmt.name))
	}
	return nil
}
