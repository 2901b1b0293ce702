// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"talenta/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations. Comments are
// append-only.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and loads its author summary.
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	db := r.db.WithContext(ctx)
	if err := db.Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	var author models.Profile
	if err := db.Select(models.SummaryColumns).Take(&author, comment.UserID).Error; err != nil {
		return translateError(err, "Profile", comment.UserID)
	}
	comment.Author = &author
	return nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Preload("Author", summaryPreload).
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return comments, nil
}
