// Command main runs the database seeder for Talenta.
package main

import (
	"context"
	"flag"
	"log"

	"talenta/internal/config"
	"talenta/internal/database"
	"talenta/internal/seed"
)

func main() {
	profiles := flag.Int("profiles", 50, "Number of profiles to create")
	posts := flag.Int("posts", 5, "Posts per profile")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	preset := flag.String("preset", "", "Built-in preset (demo, small, large) or path to a YAML preset")
	randSeed := flag.Int64("seed", 0, "Random seed for reproducible data (0 picks one)")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	opts := seed.Presets["small"]
	opts.Profiles = *profiles
	opts.PostsPerProfile = *posts
	if *preset != "" {
		loaded, err := seed.LoadPreset(*preset)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		opts = loaded
		log.Printf("Applying preset: %s (ignoring -profiles and -posts)", *preset)
	}
	if *randSeed != 0 {
		opts.Seed = *randSeed
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("❌ Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	s := seed.NewSeeder(db, opts)
	if *shouldClean {
		if err := s.ClearAll(ctx); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	if _, err := s.Run(ctx); err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Println("✨ All done! Your database is now populated with test data.")
	log.Printf("📧 All test profiles have the password: %s", seed.DefaultPassword)
}
