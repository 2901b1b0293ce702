package repository

import (
	"context"

	"talenta/internal/models"
	"talenta/internal/observability"

	"gorm.io/gorm"
)

// LikeRepository stores (user, post) likes as an idempotent set.
type LikeRepository interface {
	// Add inserts the pair unless it exists and reports whether a row was written.
	Add(ctx context.Context, userID, postID uint) (bool, error)
	// Remove deletes the pair and reports whether a row was removed.
	Remove(ctx context.Context, userID, postID uint) (bool, error)
	Exists(ctx context.Context, userID, postID uint) (bool, error)
	Count(ctx context.Context, postID uint) (int64, error)
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error)
}

type likeRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db, log: observability.NewRepoLogger("likes")}
}

func (r *likeRepository) Add(ctx context.Context, userID, postID uint) (bool, error) {
	inserted, err := insertIgnore(r.db.WithContext(ctx), &models.Like{UserID: userID, PostID: postID})
	if err != nil {
		return false, logInternal(ctx, r.log, "add", err)
	}
	r.log.LogWrite(ctx, "add", "user_id", userID, "post_id", postID, "inserted", inserted)
	return inserted, nil
}

func (r *likeRepository) Remove(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Delete(&models.Like{})
	if res.Error != nil {
		return false, logInternal(ctx, r.log, "remove", res.Error)
	}
	r.log.LogWrite(ctx, "remove", "user_id", userID, "post_id", postID, "removed", res.RowsAffected)
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID, postID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, postID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// LikedPostIDs returns the subset of postIDs the user has liked.
func (r *likeRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) ([]uint, error) {
	if userID == 0 || len(postIDs) == 0 {
		return nil, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}
