package repository

import (
	"context"
	"errors"

	"talenta/internal/models"
	"talenta/internal/observability"

	"gorm.io/gorm"
)

// ReferenceRepository manages portfolio references. Mutations are scoped to
// the owning profile in the statement itself.
type ReferenceRepository interface {
	Create(ctx context.Context, ref *models.Reference) error
	ListByUser(ctx context.Context, userID uint) ([]*models.Reference, error)
	GetOwned(ctx context.Context, id, userID uint) (*models.Reference, error)
	DeleteOwned(ctx context.Context, id, userID uint) error
}

type referenceRepository struct {
	db  *gorm.DB
	log *observability.RepoLogger
}

// NewReferenceRepository creates a new ReferenceRepository
func NewReferenceRepository(db *gorm.DB) ReferenceRepository {
	return &referenceRepository{db: db, log: observability.NewRepoLogger("portfolio_references")}
}

func errReferenceNotFound() error {
	return models.NewNotFoundMessage("Reference not found")
}

func (r *referenceRepository) Create(ctx context.Context, ref *models.Reference) error {
	if err := r.db.WithContext(ctx).Create(ref).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *referenceRepository) ListByUser(ctx context.Context, userID uint) ([]*models.Reference, error) {
	var refs []*models.Reference
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&refs).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return refs, nil
}

func (r *referenceRepository) GetOwned(ctx context.Context, id, userID uint) (*models.Reference, error) {
	var ref models.Reference
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Take(&ref).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errReferenceNotFound()
	}
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &ref, nil
}

func (r *referenceRepository) DeleteOwned(ctx context.Context, id, userID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.Reference{})
	if res.Error != nil {
		return logInternal(ctx, r.log, "delete", res.Error)
	}
	if res.RowsAffected == 0 {
		return errReferenceNotFound()
	}
	return nil
}
