package repository

import (
	"context"

	"talenta/internal/models"
	"talenta/internal/observability"

	"gorm.io/gorm"
)

// FollowRepository stores (follower, following) pairs as an idempotent set.
type FollowRepository interface {
	Add(ctx context.Context, followerID, followingID uint) (bool, error)
	Remove(ctx context.Context, followerID, followingID uint) (bool, error)
	Exists(ctx context.Context, followerID, followingID uint) (bool, error)
	CountFollowers(ctx context.Context, profileID uint) (int64, error)
}

// followRepository implements FollowRepository
type followRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewFollowRepository creates a new follow repository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db, log: observability.NewRepoLogger("follows")}
}

func (r *followRepository) Add(ctx context.Context, followerID, followingID uint) (bool, error) {
	inserted, err := insertIgnore(r.db.WithContext(ctx), &models.Follow{FollowerID: followerID, FollowingID: followingID})
	if err != nil {
		return false, logInternal(ctx, r.log, "add", err)
	}
	r.log.LogWrite(ctx, "add", "follower_id", followerID, "following_id", followingID, "inserted", inserted)
	return inserted, nil
}

func (r *followRepository) Remove(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, logInternal(ctx, r.log, "remove", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followingID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *followRepository) CountFollowers(ctx context.Context, profileID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", profileID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
