package database

import (
	"context"
	"testing"

	"talenta/internal/config"
	"talenta/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemory(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openMemory(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           5,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePool_SQLiteSingleConnection(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, configurePool(db, &config.Config{DBDriver: "sqlite", DBMaxOpenConns: 10}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestMigrate_CreatesTablesAndIndexes(t *testing.T) {
	db := openMemory(t)
	require.NoError(t, Migrate(context.Background(), db))
	// Idempotent on a second run.
	require.NoError(t, Migrate(context.Background(), db))

	for _, m := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(m))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Like{}, "idx_likes_user_post"))
	assert.True(t, db.Migrator().HasIndex(&models.Follow{}, "idx_follows_pair"))
	assert.True(t, db.Migrator().HasIndex(&models.Post{}, "idx_posts_public_created"))

	// Derived counters never become columns.
	assert.False(t, db.Migrator().HasColumn(&models.Post{}, "likes_count"))
	assert.False(t, db.Migrator().HasColumn(&models.Profile{}, "followers_count"))
}

func TestDialector_RejectsUnknownDriver(t *testing.T) {
	_, err := dialector(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestPostgresDSN_DefaultsSSLMode(t *testing.T) {
	dsn := PostgresDSN(&config.Config{DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "talenta"})
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "host=db")
}
