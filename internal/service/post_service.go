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

// MaxPostContentLength bounds post captions.
const MaxPostContentLength = 5000

// PostService creates, edits and removes posts and their stored media.
type PostService struct {
	posts         repository.PostRepository
	blobs         storage.BlobStore
	notifications *NotificationService
	feed          *FeedService
	limits        MediaLimits
	now           func() time.Time
}

type CreatePostInput struct {
	UserID         uint
	Content        string
	SkillCategory  string
	PrivacySetting string
	Media          *Upload
}

// UpdatePostInput changes only the fields that are set.
type UpdatePostInput struct {
	UserID         uint
	PostID         uint
	Content        *string
	SkillCategory  *string
	PrivacySetting *string
}

func NewPostService(
	posts repository.PostRepository,
	blobs storage.BlobStore,
	notifications *NotificationService,
	feed *FeedService,
	limits MediaLimits,
) *PostService {
	return &PostService{
		posts:         posts,
		blobs:         blobs,
		notifications: notifications,
		feed:          feed,
		limits:        limits,
		now:           time.Now,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" && in.Media == nil {
		return nil, models.NewValidationError("Add some content or media to your post")
	}
	if err := validation.MaxRunes("content", content, MaxPostContentLength); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	skill := strings.TrimSpace(in.SkillCategory)
	if skill == "" {
		return nil, models.NewValidationError("Skill category is required")
	}
	if !models.IsValidSkillCategory(skill) {
		return nil, models.NewValidationError("Unknown skill category")
	}
	privacy := strings.ToLower(strings.TrimSpace(in.PrivacySetting))
	if privacy == "" {
		privacy = models.PrivacyPublic
	}
	if !models.IsValidPrivacy(privacy) {
		return nil, models.NewValidationError("privacy_setting must be public, followers or private")
	}

	post := &models.Post{
		UserID:         in.UserID,
		Content:        content,
		SkillCategory:  skill,
		PrivacySetting: privacy,
	}

	if in.Media != nil {
		contentType, ext, kind, err := classifyPostMedia(in.Media, s.limits.PostMedia)
		if err != nil {
			return nil, err
		}
		key := storage.PostMediaKey(in.UserID, ext, s.now())
		url, err := putBlob(ctx, s.blobs, key, in.Media.Content, contentType)
		if err != nil {
			return nil, err
		}
		post.MediaURL, post.MediaPath, post.MediaType = url, key, kind
	}

	if err := s.posts.Create(ctx, post); err != nil {
		removeBlob(ctx, s.blobs, post.MediaPath)
		return nil, err
	}

	if privacy == models.PrivacyPublic {
		s.feed.InvalidateFeeds(ctx)
	}

	return s.posts.GetVisible(ctx, post.ID, in.UserID)
}

// UpdatePost edits a post the caller owns. Someone else's post is reported missing.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*models.Post, error) {
	updates := make(map[string]interface{})
	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if err := validation.MaxRunes("content", content, MaxPostContentLength); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
		if content == "" {
			// Only a post with media may lose its caption.
			current, err := s.posts.GetVisible(ctx, in.PostID, in.UserID)
			if err != nil {
				return nil, err
			}
			if current.UserID != in.UserID {
				return nil, models.NewNotFoundError("Post", in.PostID)
			}
			if current.MediaURL == "" {
				return nil, models.NewValidationError("Add some content or media to your post")
			}
		}
		updates["content"] = content
	}
	if in.SkillCategory != nil {
		skill := strings.TrimSpace(*in.SkillCategory)
		if !models.IsValidSkillCategory(skill) {
			return nil, models.NewValidationError("Unknown skill category")
		}
		updates["skill_category"] = skill
	}
	if in.PrivacySetting != nil {
		privacy := strings.ToLower(strings.TrimSpace(*in.PrivacySetting))
		if !models.IsValidPrivacy(privacy) {
			return nil, models.NewValidationError("privacy_setting must be public, followers or private")
		}
		updates["privacy_setting"] = privacy
	}
	if len(updates) == 0 {
		return nil, models.NewValidationError("Nothing to update")
	}

	if err := s.posts.UpdateOwned(ctx, in.PostID, in.UserID, updates); err != nil {
		return nil, err
	}

	s.notifications.notifyQuietly(ctx, &models.Notification{
		UserID:        in.UserID,
		Type:          models.NotificationContent,
		Title:         "Post Updated",
		Message:       "You updated your post",
		RelatedPostID: uintPtr(in.PostID),
	})
	s.feed.InvalidateFeeds(ctx)
	return s.posts.GetVisible(ctx, in.PostID, in.UserID)
}

// DeletePost removes a post the caller owns, then its media, best effort.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.posts.DeleteOwned(ctx, postID, userID)
	if err != nil {
		return err
	}
	removeBlob(ctx, s.blobs, post.MediaPath)

	// The post is gone, so the notification does not point at it.
	s.notifications.notifyQuietly(ctx, &models.Notification{
		UserID:  userID,
		Type:    models.NotificationContent,
		Title:   "Post Deleted",
		Message: "You deleted your post",
	})
	s.feed.InvalidateFeeds(ctx)
	return nil
}
