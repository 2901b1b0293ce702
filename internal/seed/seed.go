// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"talenta/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// DefaultPassword is shared by every seeded profile.
const DefaultPassword = "password123"

// Options size a seeding run. Rates are probabilities in [0, 1].
type Options struct {
	Profiles             int     `yaml:"profiles"`
	PostsPerProfile      int     `yaml:"posts_per_profile"`
	CommentsPerPost      int     `yaml:"comments_per_post"`
	MessagesPerProfile   int     `yaml:"messages_per_profile"`
	ReferencesPerProfile int     `yaml:"references_per_profile"`
	FollowRate           float64 `yaml:"follow_rate"`
	LikeRate             float64 `yaml:"like_rate"`
	MaxDays              int     `yaml:"max_days"`
	Seed                 int64   `yaml:"seed"`
	Password             string  `yaml:"password"`
	// FastHash trades bcrypt strength for speed on large local runs.
	FastHash bool `yaml:"fast_hash"`
}

// Presets are the named sizes cmd/seed accepts.
var Presets = map[string]Options{
	"demo": {
		Profiles: 12, PostsPerProfile: 4, CommentsPerPost: 2, MessagesPerProfile: 3,
		ReferencesPerProfile: 1, FollowRate: 0.3, LikeRate: 0.25, MaxDays: 30,
	},
	"small": {
		Profiles: 50, PostsPerProfile: 5, CommentsPerPost: 3, MessagesPerProfile: 5,
		ReferencesPerProfile: 2, FollowRate: 0.15, LikeRate: 0.1, MaxDays: 90,
	},
	"large": {
		Profiles: 500, PostsPerProfile: 10, CommentsPerPost: 4, MessagesPerProfile: 8,
		ReferencesPerProfile: 2, FollowRate: 0.02, LikeRate: 0.01, MaxDays: 180, FastHash: true,
	},
}

// LoadPreset resolves name as a built-in preset or as a YAML file. Fields
// missing from a file keep the "small" values.
func LoadPreset(name string) (Options, error) {
	if opts, ok := Presets[strings.ToLower(name)]; ok {
		return opts, nil
	}
	raw, err := os.ReadFile(name)
	if err != nil {
		return Options{}, fmt.Errorf("unknown preset %q: %w", name, err)
	}
	opts := Presets["small"]
	if err := yaml.Unmarshal(raw, &opts); err != nil {
		return Options{}, fmt.Errorf("parse preset %s: %w", name, err)
	}
	if opts.Profiles < 1 {
		return Options{}, fmt.Errorf("preset %s: profiles must be at least 1", name)
	}
	return opts, nil
}

// Summary counts what a run inserted.
type Summary struct {
	Profiles   int
	Posts      int
	Comments   int
	Likes      int
	Follows    int
	Messages   int
	References int
}

// Seeder populates a database according to Options.
type Seeder struct {
	db   *gorm.DB
	opts Options
}

// NewSeeder creates a seeder bound to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	if opts.Password == "" {
		opts.Password = DefaultPassword
	}
	return &Seeder{db: db, opts: opts}
}

// ClearAll removes every row the application owns, children first.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("🗑️  Clearing existing data...")
	tables := []any{
		&models.Notification{},
		&models.Message{},
		&models.Comment{},
		&models.Like{},
		&models.Follow{},
		&models.Reference{},
		&models.Post{},
		&models.Profile{},
	}
	tx := s.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped()
	for _, table := range tables {
		if err := tx.Delete(table).Error; err != nil {
			return fmt.Errorf("clear %T: %w", table, err)
		}
	}
	return nil
}

// Run inserts profiles first, then their posts, then the social graph and
// engagement between them.
func (s *Seeder) Run(ctx context.Context) (*Summary, error) {
	if s.opts.Profiles < 1 {
		return nil, fmt.Errorf("profiles must be at least 1")
	}
	log.Printf("🌱 Seeding %d profiles with %d posts each...", s.opts.Profiles, s.opts.PostsPerProfile)

	cost := bcrypt.DefaultCost
	if s.opts.FastHash {
		cost = bcrypt.MinCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(s.opts.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	f := NewFactory(s.db, s.opts.Seed, string(hash), s.opts.MaxDays)
	sum := &Summary{}

	profiles := make([]*models.Profile, 0, s.opts.Profiles)
	for i := 0; i < s.opts.Profiles; i++ {
		p, err := f.CreateProfile(ctx)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	sum.Profiles = len(profiles)
	log.Printf("✓ %d profiles created", sum.Profiles)

	posts := make([]*models.Post, 0, len(profiles)*s.opts.PostsPerProfile)
	for _, p := range profiles {
		for i := 0; i < s.opts.PostsPerProfile; i++ {
			posts = append(posts, f.BuildPost(p))
		}
	}
	if err := f.CreatePosts(ctx, posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}
	sum.Posts = len(posts)
	log.Printf("✓ %d posts created", sum.Posts)

	if err := s.seedGraph(ctx, f, profiles, sum); err != nil {
		return nil, err
	}
	if err := s.seedEngagement(ctx, f, profiles, posts, sum); err != nil {
		return nil, err
	}
	if err := s.seedInbox(ctx, f, profiles, sum); err != nil {
		return nil, err
	}

	log.Printf("🎉 Seeding complete: %+v", *sum)
	return sum, nil
}

func (s *Seeder) chance(f *Factory, rate float64) bool {
	return rate > 0 && f.Faker().Float64Range(0, 1) < rate
}

func (s *Seeder) seedGraph(ctx context.Context, f *Factory, profiles []*models.Profile, sum *Summary) error {
	for _, follower := range profiles {
		for _, target := range profiles {
			if follower.ID == target.ID || !s.chance(f, s.opts.FollowRate) {
				continue
			}
			added, err := f.CreateFollow(ctx, follower, target)
			if err != nil {
				return fmt.Errorf("create follow: %w", err)
			}
			if added {
				sum.Follows++
			}
		}
	}
	log.Printf("✓ %d follows created", sum.Follows)
	return nil
}

func (s *Seeder) seedEngagement(ctx context.Context, f *Factory, profiles []*models.Profile, posts []*models.Post, sum *Summary) error {
	for _, post := range posts {
		if post.PrivacySetting != models.PrivacyPublic {
			continue
		}
		for _, p := range profiles {
			if p.ID == post.UserID || !s.chance(f, s.opts.LikeRate) {
				continue
			}
			added, err := f.CreateLike(ctx, p, post)
			if err != nil {
				return fmt.Errorf("create like: %w", err)
			}
			if added {
				sum.Likes++
			}
		}
		if s.opts.CommentsPerPost <= 0 || len(profiles) < 2 {
			continue
		}
		for i := f.Faker().Number(0, s.opts.CommentsPerPost); i > 0; i-- {
			author := profiles[f.Faker().Number(0, len(profiles)-1)]
			if _, err := f.CreateComment(ctx, author, post); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
		}
	}
	log.Printf("✓ %d likes and %d comments created", sum.Likes, sum.Comments)
	return nil
}

func (s *Seeder) seedInbox(ctx context.Context, f *Factory, profiles []*models.Profile, sum *Summary) error {
	for _, owner := range profiles {
		for i := 0; i < s.opts.ReferencesPerProfile; i++ {
			if _, err := f.CreateLinkReference(ctx, owner); err != nil {
				return fmt.Errorf("create reference: %w", err)
			}
			sum.References++
		}
		if len(profiles) < 2 {
			continue
		}
		for i := 0; i < s.opts.MessagesPerProfile; i++ {
			partner := profiles[f.Faker().Number(0, len(profiles)-1)]
			if partner.ID == owner.ID {
				continue
			}
			if _, err := f.CreateMessage(ctx, owner, partner); err != nil {
				return fmt.Errorf("create message: %w", err)
			}
			sum.Messages++
		}
	}
	log.Printf("✓ %d references and %d messages created", sum.References, sum.Messages)
	return nil
}

// EnsureDemo seeds the "demo" preset into an empty database. A database that
// already has profiles is left alone.
func EnsureDemo(ctx context.Context, db *gorm.DB) (bool, error) {
	var count int64
	if err := db.WithContext(ctx).Model(&models.Profile{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count profiles: %w", err)
	}
	if count > 0 {
		return false, nil
	}
	if _, err := NewSeeder(db, Presets["demo"]).Run(ctx); err != nil {
		return false, err
	}
	return true, nil
}
