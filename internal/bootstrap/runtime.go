// Package bootstrap wires the process-wide dependencies shared by the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"talenta/internal/cache"
	"talenta/internal/config"
	"talenta/internal/database"
	"talenta/internal/middleware"
	"talenta/internal/seed"
	"talenta/internal/storage"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemo fills an empty development database with the demo preset.
	SeedDemo bool
	// SkipStorage leaves the blob store unset, for binaries that never upload.
	SkipStorage bool
}

// Runtime holds the connections a server needs.
type Runtime struct {
	DB    *gorm.DB
	Redis *redis.Client
	Blobs storage.BlobStore
}

// InitRuntime connects to the database, Redis and object storage. Redis and
// storage are optional: a failure there is logged and the field left nil.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt := &Runtime{DB: db}

	// May leave a nil client when Redis is unreachable.
	cache.InitRedis(cfg.RedisURL)
	rt.Redis = cache.GetClient()

	if !opts.SkipStorage {
		storageCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		blobs, err := storage.NewMinioStore(storageCtx, storage.MinioConfig{
			Endpoint:  cfg.StorageEndpoint,
			AccessKey: cfg.StorageAccessKey,
			SecretKey: cfg.StorageSecretKey,
			Bucket:    cfg.StorageBucket,
			UseSSL:    cfg.StorageUseSSL,
			PublicURL: cfg.StoragePublicURL,
		})
		cancel()
		if err != nil {
			// Uploads fail with an internal error until storage is reachable.
			middleware.Logger.Warn("object storage unavailable, uploads disabled", slog.String("error", err.Error()))
		} else {
			rt.Blobs = blobs
		}
	}

	if opts.SeedDemo && !cfg.IsProduction() {
		seeded, err := seed.EnsureDemo(ctx, db)
		if err != nil {
			return nil, fmt.Errorf("demo seed failed: %w", err)
		}
		if seeded {
			middleware.Logger.Info("demo data seeded", slog.String("password", seed.DefaultPassword))
		}
	}

	return rt, nil
}
