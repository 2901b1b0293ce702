package service

import (
	"context"
	"strings"
	"time"

	"talenta/internal/models"
	"talenta/internal/repository"
	"talenta/internal/storage"
	"talenta/internal/validation"
)

// ReferenceService manages portfolio links and documents.
type ReferenceService struct {
	refs   repository.ReferenceRepository
	blobs  storage.BlobStore
	limits MediaLimits
	now    func() time.Time
}

type AddReferenceInput struct {
	UserID      uint
	Type        string
	Title       string
	Description string
	URL         string
	File        *Upload
}

func NewReferenceService(refs repository.ReferenceRepository, blobs storage.BlobStore, limits MediaLimits) *ReferenceService {
	return &ReferenceService{refs: refs, blobs: blobs, limits: limits, now: time.Now}
}

func (s *ReferenceService) List(ctx context.Context, ownerID uint) ([]*models.Reference, error) {
	refs, err := s.refs.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if refs == nil {
		refs = []*models.Reference{}
	}
	return refs, nil
}

// Add stores a link, or uploads a document and records where it lives.
func (s *ReferenceService) Add(ctx context.Context, in AddReferenceInput) (*models.Reference, error) {
	title, err := validation.RequiredText("title", in.Title, validation.MaxReferenceTitle)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	description := strings.TrimSpace(in.Description)
	if err := validation.MaxRunes("description", description, validation.MaxBioLength); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	ref := &models.Reference{
		UserID:      in.UserID,
		Type:        strings.ToLower(strings.TrimSpace(in.Type)),
		Title:       title,
		Description: description,
	}

	switch ref.Type {
	case models.ReferenceLink:
		link := strings.TrimSpace(in.URL)
		if err := validation.ValidateHTTPURL(link); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		ref.URL = link
	case models.ReferenceDocument:
		if in.File == nil {
			return nil, models.NewValidationError("A file is required for document references")
		}
		contentType, ext, err := classifyDocument(in.File, s.limits.Document)
		if err != nil {
			return nil, err
		}
		key := storage.ReferenceKey(in.UserID, ext, s.now())
		url, err := putBlob(ctx, s.blobs, key, in.File.Content, contentType)
		if err != nil {
			return nil, err
		}
		ref.URL = url
		ref.FilePath = key
		ref.FileName = in.File.Filename
		ref.FileSize = int64(len(in.File.Content))
	default:
		return nil, models.NewValidationError("type must be document or link")
	}

	if err := s.refs.Create(ctx, ref); err != nil {
		removeBlob(ctx, s.blobs, ref.FilePath)
		return nil, err
	}
	return ref, nil
}

// Delete removes a reference the caller owns. A stored document is removed
// first, best effort; the row goes regardless.
func (s *ReferenceService) Delete(ctx context.Context, userID, id uint) error {
	ref, err := s.refs.GetOwned(ctx, id, userID)
	if err != nil {
		return err
	}
	removeBlob(ctx, s.blobs, ref.FilePath)
	return s.refs.DeleteOwned(ctx, id, userID)
}
