package service

import (
	"context"
	"strings"
	"time"

	"talenta/internal/featureflags"
	"talenta/internal/models"
	"talenta/internal/repository"
	"talenta/internal/storage"
	"talenta/internal/validation"
)

// ProfileService reads and edits profiles. The caller id always comes from
// the access token.
type ProfileService struct {
	profiles repository.ProfileRepository
	blobs    storage.BlobStore
	flags    *featureflags.Manager
	limits   MediaLimits
	now      func() time.Time
}

// UpsertProfileInput carries the editable fields. Nil fields keep their
// current value.
type UpsertProfileInput struct {
	UserID    uint
	Username  *string
	FullName  *string
	Bio       *string
	SkillTags []string
	// SetSkillTags distinguishes "clear the tags" from "leave them alone".
	SetSkillTags bool
	Avatar       *Upload
}

func NewProfileService(
	profiles repository.ProfileRepository,
	blobs storage.BlobStore,
	flags *featureflags.Manager,
	limits MediaLimits,
) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		blobs:    blobs,
		flags:    flags,
		limits:   limits,
		now:      time.Now,
	}
}

// GetProfile returns a profile with derived counters. Email is only shown to its owner.
func (s *ProfileService) GetProfile(ctx context.Context, id, viewerID uint) (*models.Profile, error) {
	profile, err := s.profiles.GetByID(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	if viewerID != id {
		profile.Email = ""
	}

	now := s.now()
	times, err := s.profiles.PostTimes(ctx, id, now.AddDate(0, 0, -models.MaxStreakDays-1))
	if err != nil {
		return nil, err
	}
	profile.LearningStreak = models.LearningStreak(times, now)
	return profile, nil
}

// UpsertProfile validates the edit, stores a new avatar first and writes
// every field, avatar URL included, in one upsert.
func (s *ProfileService) UpsertProfile(ctx context.Context, in UpsertProfileInput) (*models.Profile, error) {
	current, err := s.profiles.GetByID(ctx, in.UserID, in.UserID)
	if err != nil {
		return nil, err
	}
	next := *current

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		if err := validation.ValidateUsername(username); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		next.Username = username
	}
	if in.FullName != nil {
		fullName := strings.TrimSpace(*in.FullName)
		if err := validation.MaxRunes("full_name", fullName, validation.MaxFullNameLength); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		next.FullName = fullName
	}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if err := validation.MaxRunes("bio", bio, validation.MaxBioLength); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		next.Bio = bio
	}
	if in.SetSkillTags {
		tags, err := validation.NormalizeSkillTags(in.SkillTags)
		if err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		next.SkillTags = tags
	}
	if next.SkillTags == nil {
		next.SkillTags = []string{}
	}

	var uploadedKey string
	if in.Avatar != nil {
		reencode := s.flags.Enabled(featureflags.AvatarWebP, in.UserID)
		data, contentType, ext, err := prepareAvatar(in.Avatar, s.limits.Avatar, reencode)
		if err != nil {
			return nil, err
		}
		key := storage.AvatarKey(in.UserID, ext, s.now())
		url, err := putBlob(ctx, s.blobs, key, data, contentType)
		if err != nil {
			return nil, err
		}
		uploadedKey = key
		next.AvatarURL, next.AvatarPath = url, key
	}

	next.UpdatedAt = s.now()
	if err := s.profiles.Upsert(ctx, &next); err != nil {
		removeBlob(ctx, s.blobs, uploadedKey)
		return nil, err
	}
	if uploadedKey != "" && current.AvatarPath != "" && current.AvatarPath != uploadedKey {
		removeBlob(ctx, s.blobs, current.AvatarPath)
	}

	return s.profiles.GetByID(ctx, in.UserID, in.UserID)
}

// SetHireable flips only the caller's hireable column.
func (s *ProfileService) SetHireable(ctx context.Context, userID uint, hireable bool) (*models.Profile, error) {
	if err := s.profiles.SetHireable(ctx, userID, hireable); err != nil {
		return nil, err
	}
	return s.profiles.GetByID(ctx, userID, userID)
}
