// Command migrate applies the schema: AutoMigrate for every model, then the
// feed and conversation indexes.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"talenta/internal/config"
	"talenta/internal/database"

	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Connect already migrates outside production; production relies on this
	// command, so migrate explicitly either way.
	db, err := database.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer closeDB(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	if err := database.Migrate(ctx, db); err != nil {
		return err
	}
	log.Printf("schema up to date (driver=%s env=%s)", db.Dialector.Name(), cfg.Env)
	return nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
