package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"talenta/internal/featureflags"
	"talenta/internal/middleware"
	"talenta/internal/models"
	"talenta/internal/repository"
	"talenta/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type publishedEvent struct {
	UserID  uint
	Type    string
	Payload interface{}
}

// recordingPublisher captures realtime events instead of sending them.
type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *recordingPublisher) PublishEvent(_ context.Context, userID uint, eventType string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Type: eventType, Payload: payload})
	return p.err
}

func (p *recordingPublisher) ofType(eventType string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// testEnv wires every service over one in-memory database.
type testEnv struct {
	db        *gorm.DB
	rdb       *redis.Client
	mr        *miniredis.Miniredis
	blobs     *testutil.BlobStoreStub
	publisher *recordingPublisher
	flags     *featureflags.Manager

	profiles      repository.ProfileRepository
	posts         repository.PostRepository
	likes         repository.LikeRepository
	follows       repository.FollowRepository
	comments      repository.CommentRepository
	messages      repository.MessageRepository
	notifications repository.NotificationRepository
	references    repository.ReferenceRepository

	notificationSvc *NotificationService
	authSvc         *AuthService
	feedSvc         *FeedService
	postSvc         *PostService
	engagementSvc   *EngagementService
	messageSvc      *MessageService
	profileSvc      *ProfileService
	referenceSvc    *ReferenceService
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	e := &testEnv{
		db:            db,
		rdb:           rdb,
		mr:            mr,
		blobs:         testutil.NewBlobStoreStub(),
		publisher:     &recordingPublisher{},
		flags:         featureflags.NewManager(flags),
		profiles:      repository.NewProfileRepository(db),
		posts:         repository.NewPostRepository(db),
		likes:         repository.NewLikeRepository(db),
		follows:       repository.NewFollowRepository(db),
		comments:      repository.NewCommentRepository(db),
		messages:      repository.NewMessageRepository(db),
		notifications: repository.NewNotificationRepository(db),
		references:    repository.NewReferenceRepository(db),
	}
	limits := DefaultMediaLimits()
	e.notificationSvc = NewNotificationService(e.notifications, e.messages, e.profiles, e.publisher)
	e.authSvc = NewAuthService(e.profiles, e.notificationSvc, middleware.NewTokens("test-secret-test-secret-test-secret", time.Hour), rdb, true).
		WithHashCost(bcrypt.MinCost)
	e.feedSvc = NewFeedService(e.posts, e.profiles, e.likes, rdb, e.flags)
	e.postSvc = NewPostService(e.posts, e.blobs, e.notificationSvc, e.feedSvc, limits)
	e.engagementSvc = NewEngagementService(e.posts, e.profiles, e.likes, e.follows, e.comments, e.notificationSvc)
	e.messageSvc = NewMessageService(e.messages, e.profiles, e.notificationSvc, e.publisher)
	e.profileSvc = NewProfileService(e.profiles, e.blobs, e.flags, limits)
	e.referenceSvc = NewReferenceService(e.references, e.blobs, limits)
	return e
}

func (e *testEnv) profile(t *testing.T, username string) *models.Profile {
	t.Helper()
	p := &models.Profile{
		Email:        fmt.Sprintf("%s@example.com", username),
		PasswordHash: "hash",
		Username:     username,
		FullName:     "Full " + username,
		SkillTags:    []string{},
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) post(t *testing.T, userID uint, privacy string, age time.Duration) *models.Post {
	t.Helper()
	p := &models.Post{
		UserID:         userID,
		Content:        "practice clip",
		SkillCategory:  "Cooking",
		PrivacySetting: privacy,
		CreatedAt:      time.Now().Add(-age),
	}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

func (e *testEnv) notificationsFor(t *testing.T, userID uint, typ string) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, e.db.Where("user_id = ? AND type = ?", userID, typ).Order("id").Find(&out).Error)
	return out
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, models.ErrorCode(err), "error: %v", err)
}

// failingNotificationRepo fails every write.
type failingNotificationRepo struct {
	repository.NotificationRepository
}

func (failingNotificationRepo) Create(context.Context, *models.Notification) error {
	return models.NewInternalError(errors.New("notifications table locked"))
}

func strPtr(s string) *string { return &s }
