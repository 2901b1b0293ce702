// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"time"

	"talenta/internal/models"
	"talenta/internal/observability"

	"gorm.io/gorm"
)

// Feed sort modes.
const (
	SortRecent   = "recent"
	SortPopular  = "popular"
	SortTrending = "trending"
)

// TrendingWindow bounds the trending feed and trending skills.
const TrendingWindow = 7 * 24 * time.Hour

// FeedQuery selects a page of public posts.
type FeedQuery struct {
	Sort   string
	Skill  string
	Limit  int
	Offset int
	// Since excludes older posts when non-zero.
	Since time.Time
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetVisible(ctx context.Context, id, viewerID uint) (*models.Post, error)
	List(ctx context.Context, q FeedQuery) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID, viewerID uint, limit, offset int) ([]*models.Post, error)
	Search(ctx context.Context, query string, limit int) ([]*models.Post, error)
	UpdateOwned(ctx context.Context, id, ownerID uint, updates map[string]interface{}) error
	DeleteOwned(ctx context.Context, id, ownerID uint) (*models.Post, error)
	RecordShare(ctx context.Context, id, viewerID uint) (int64, error)
	SkillCounts(ctx context.Context, since time.Time, limit int) ([]models.SkillCount, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db, log: observability.NewRepoLogger("posts")}
}

// withPostCounters selects the derived like and comment counts so every
// read path returns counters consistent with the join tables.
func withPostCounters(db *gorm.DB) *gorm.DB {
	return db.Select("posts.*, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS likes_count, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comments_count")
}

// visibleTo restricts posts to public ones plus the viewer's own.
func visibleTo(db *gorm.DB, viewerID uint) *gorm.DB {
	if viewerID == 0 {
		return db.Where("posts.privacy_setting = ?", models.PrivacyPublic)
	}
	return db.Where("(posts.privacy_setting = ? OR posts.user_id = ?)", models.PrivacyPublic, viewerID)
}

func (r *postRepository) base(ctx context.Context) *gorm.DB {
	return withPostCounters(r.db.WithContext(ctx).Model(&models.Post{})).
		Preload("Author", summaryPreload)
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// GetVisible loads a post the viewer is allowed to see. Hidden posts of other
// users are reported as missing.
func (r *postRepository) GetVisible(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := visibleTo(r.base(ctx), viewerID).
		Where("posts.id = ?", id).
		Take(&post).Error
	if err != nil {
		return nil, translateError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, q FeedQuery) ([]*models.Post, error) {
	db := r.base(ctx).Where("posts.privacy_setting = ?", models.PrivacyPublic)
	if q.Skill != "" {
		db = db.Where("posts.skill_category = ?", q.Skill)
	}
	if !q.Since.IsZero() {
		db = db.Where("posts.created_at >= ?", q.Since)
	}

	var posts []*models.Post
	err := applySort(db, q.Sort).
		Limit(ClampLimit(q.Limit)).
		Offset(max(q.Offset, 0)).
		Find(&posts).Error
	if err != nil {
		return nil, logInternal(ctx, r.log, "list_feed", err)
	}
	return posts, nil
}

// applySort appends the ORDER BY clause for the requested sort type.
// likes_count is a SELECT alias from withPostCounters; both postgres and
// sqlite accept a bare alias in ORDER BY. The id keeps pages stable on ties.
func applySort(db *gorm.DB, sort string) *gorm.DB {
	switch sort {
	case SortPopular, SortTrending:
		return db.Order("likes_count DESC").Order("posts.created_at DESC").Order("posts.id DESC")
	default:
		return db.Order("posts.created_at DESC").Order("posts.id DESC")
	}
}

func (r *postRepository) ListByUser(ctx context.Context, userID, viewerID uint, limit, offset int) ([]*models.Post, error) {
	var posts []*models.Post
	err := visibleTo(r.base(ctx), viewerID).
		Where("posts.user_id = ?", userID).
		Order("posts.created_at DESC").
		Limit(ClampLimit(limit)).
		Offset(max(offset, 0)).
		Find(&posts).Error
	if err != nil {
		return nil, logInternal(ctx, r.log, "list_by_user", err)
	}
	return posts, nil
}

func (r *postRepository) Search(ctx context.Context, query string, limit int) ([]*models.Post, error) {
	var posts []*models.Post
	pattern := containsPattern(query)
	err := r.base(ctx).
		Where("posts.privacy_setting = ?", models.PrivacyPublic).
		Where(`(LOWER(posts.content) LIKE ? ESCAPE '\' OR LOWER(posts.skill_category) LIKE ? ESCAPE '\')`, pattern, pattern).
		Order("posts.created_at DESC").
		Limit(ClampLimit(limit)).
		Find(&posts).Error
	if err != nil {
		return nil, logInternal(ctx, r.log, "search", err)
	}
	return posts, nil
}

// UpdateOwned applies updates only when ownerID owns the post.
func (r *postRepository) UpdateOwned(ctx context.Context, id, ownerID uint, updates map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(updates)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

// DeleteOwned soft-deletes a post owned by ownerID and returns the removed
// row so the caller can clean up its media.
func (r *postRepository) DeleteOwned(ctx context.Context, id, ownerID uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, ownerID).Take(&post).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, translateError(err, "Post", id)
	}
	return &post, nil
}

// RecordShare bumps the share counter of a post the viewer can see and
// returns the new value.
func (r *postRepository) RecordShare(ctx context.Context, id, viewerID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := visibleTo(tx.Model(&models.Post{}), viewerID).
			Where("posts.id = ?", id).
			UpdateColumn("shares_count", gorm.Expr("shares_count + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		var counts []int64
		if err := tx.Model(&models.Post{}).Where("id = ?", id).Pluck("shares_count", &counts).Error; err != nil {
			return err
		}
		if len(counts) == 0 {
			return gorm.ErrRecordNotFound
		}
		count = counts[0]
		return nil
	})
	if err != nil {
		return 0, translateError(err, "Post", id)
	}
	return count, nil
}

// SkillCounts groups public posts by skill category, most used first.
// A zero since counts all time.
func (r *postRepository) SkillCounts(ctx context.Context, since time.Time, limit int) ([]models.SkillCount, error) {
	db := r.db.WithContext(ctx).Model(&models.Post{}).
		Select("skill_category, COUNT(*) AS posts_count").
		Where("privacy_setting = ? AND deleted_at IS NULL", models.PrivacyPublic)
	if !since.IsZero() {
		db = db.Where("created_at >= ?", since)
	}

	if limit <= 0 {
		limit = len(models.SkillCategories)
	}

	var counts []models.SkillCount
	err := db.Group("skill_category").
		Order("posts_count DESC").
		Order("skill_category ASC").
		Limit(limit).
		Scan(&counts).Error
	if err != nil {
		return nil, logInternal(ctx, r.log, "skill_counts", err)
	}
	return counts, nil
}
