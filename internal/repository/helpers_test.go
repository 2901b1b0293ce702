package repository

import (
	"fmt"
	"testing"
	"time"

	"talenta/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func seedProfile(t *testing.T, db *gorm.DB, username string) *models.Profile {
	t.Helper()
	p := &models.Profile{
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "hash",
		Username:     username,
		FullName:     "Full " + username,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

type postOpt func(*models.Post)

func withPrivacy(p string) postOpt {
	return func(post *models.Post) { post.PrivacySetting = p }
}

func withSkill(s string) postOpt {
	return func(post *models.Post) { post.SkillCategory = s }
}

func createdAgo(d time.Duration) postOpt {
	return func(post *models.Post) { post.CreatedAt = time.Now().Add(-d) }
}

func withContent(c string) postOpt {
	return func(post *models.Post) { post.Content = c }
}

func seedPost(t *testing.T, db *gorm.DB, userID uint, opts ...postOpt) *models.Post {
	t.Helper()
	post := &models.Post{
		UserID:         userID,
		Content:        "practice clip",
		SkillCategory:  "Cooking",
		PrivacySetting: models.PrivacyPublic,
		CreatedAt:      time.Now(),
	}
	for _, opt := range opts {
		opt(post)
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func seedLikes(t *testing.T, db *gorm.DB, postID uint, users ...*models.Profile) {
	t.Helper()
	for _, u := range users {
		require.NoError(t, db.Create(&models.Like{UserID: u.ID, PostID: postID}).Error)
	}
}
