// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"time"

	"talenta/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id, viewerID uint) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	GetSummaries(ctx context.Context, ids []uint) (map[uint]*models.Profile, error)
	Exists(ctx context.Context, id uint) (bool, error)
	Upsert(ctx context.Context, profile *models.Profile) error
	SetHireable(ctx context.Context, id uint, hireable bool) error
	UpdatePassword(ctx context.Context, id uint, hash string) error
	Search(ctx context.Context, query string, limit int) ([]*models.Profile, error)
	PostTimes(ctx context.Context, userID uint, since time.Time) ([]time.Time, error)
}

// upsertColumns are the fields a profile owner may edit.
var upsertColumns = []string{"username", "full_name", "bio", "skill_tags", "avatar_url", "avatar_path", "updated_at"}

var searchColumns = []string{"id", "username", "full_name", "avatar_url", "bio", "skill_tags", "hireable"}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// withProfileCounters selects the derived follower, following and post
// counts. Hidden posts only count when the viewer owns the profile.
func withProfileCounters(db *gorm.DB, viewerID uint) *gorm.DB {
	return db.Select("profiles.*, "+
		"(SELECT COUNT(*) FROM follows WHERE follows.following_id = profiles.id) AS followers_count, "+
		"(SELECT COUNT(*) FROM follows WHERE follows.follower_id = profiles.id) AS following_count, "+
		"(SELECT COUNT(*) FROM posts WHERE posts.user_id = profiles.id AND posts.deleted_at IS NULL "+
		"AND (posts.privacy_setting = ? OR posts.user_id = ?)) AS posts_count",
		models.PrivacyPublic, viewerID)
}

func (r *profileRepository) Create(ctx context.Context, profile *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(profile).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("An account with this email or username already exists")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id, viewerID uint) (*models.Profile, error) {
	var profile models.Profile
	err := withProfileCounters(r.db.WithContext(ctx).Model(&models.Profile{}), viewerID).
		Where("profiles.id = ?", id).
		Take(&profile).Error
	if err != nil {
		return nil, translateError(err, "Profile", id)
	}

	if viewerID != 0 && viewerID != id {
		var n int64
		if err := r.db.WithContext(ctx).Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", viewerID, id).
			Count(&n).Error; err != nil {
			return nil, models.NewInternalError(err)
		}
		profile.IsFollowing = n > 0
	}
	return &profile, nil
}

// GetByEmail returns nil, nil when no profile uses email.
func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &profile, nil
}

func (r *profileRepository) GetSummaries(ctx context.Context, ids []uint) (map[uint]*models.Profile, error) {
	out := make(map[uint]*models.Profile, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var profiles []*models.Profile
	if err := r.db.WithContext(ctx).Select(models.SummaryColumns).
		Where("id IN ?", ids).
		Find(&profiles).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	for _, p := range profiles {
		out[p.ID] = p
	}
	return out, nil
}

func (r *profileRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

// Upsert writes the editable profile fields keyed by profile.ID in a single
// statement.
func (r *profileRepository) Upsert(ctx context.Context, profile *models.Profile) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(upsertColumns),
	}).Create(profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewConflictError("Username is already taken")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *profileRepository) SetHireable(ctx context.Context, id uint, hireable bool) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		Update("hireable", hireable)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", id)
	}
	return nil
}

func (r *profileRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", id).
		Update("password_hash", hash)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", id)
	}
	return nil
}

func (r *profileRepository) Search(ctx context.Context, query string, limit int) ([]*models.Profile, error) {
	var profiles []*models.Profile
	pattern := containsPattern(query)
	err := r.db.WithContext(ctx).
		Select(searchColumns).
		Where(`LOWER(username) LIKE ? ESCAPE '\' OR LOWER(full_name) LIKE ? ESCAPE '\'`, pattern, pattern).
		Order("username ASC").
		Limit(ClampLimit(limit)).
		Find(&profiles).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return profiles, nil
}

// PostTimes lists when userID posted since the given time, private posts
// included. It feeds the learning streak.
func (r *profileRepository) PostTimes(ctx context.Context, userID uint, since time.Time) ([]time.Time, error) {
	var times []time.Time
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at DESC").
		Pluck("created_at", &times).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return times, nil
}
