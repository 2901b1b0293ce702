package service

import (
	"context"

	"talenta/internal/models"
	"talenta/internal/observability"
	"talenta/internal/repository"
	"talenta/internal/validation"
)

// EngagementService applies likes, follows and comments. Likes and follows
// are set operations: repeating a call changes nothing and notifies nobody.
type EngagementService struct {
	posts         repository.PostRepository
	profiles      repository.ProfileRepository
	likes         repository.LikeRepository
	follows       repository.FollowRepository
	comments      repository.CommentRepository
	notifications *NotificationService
}

func NewEngagementService(
	posts repository.PostRepository,
	profiles repository.ProfileRepository,
	likes repository.LikeRepository,
	follows repository.FollowRepository,
	comments repository.CommentRepository,
	notifications *NotificationService,
) *EngagementService {
	return &EngagementService{
		posts:         posts,
		profiles:      profiles,
		likes:         likes,
		follows:       follows,
		comments:      comments,
		notifications: notifications,
	}
}

// SharePost counts a share of a post the caller can see.
func (s *EngagementService) SharePost(ctx context.Context, userID, postID uint) (state *models.ShareState, err error) {
	defer func() {
		observability.EngagementWrites.WithLabelValues("share", observability.Result(err)).Inc()
	}()

	count, err := s.posts.RecordShare(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	return &models.ShareState{PostID: postID, SharesCount: count}, nil
}

// SetLike makes the (user, post) like exist or not and returns the new count.
// Posts the caller cannot see are reported missing.
func (s *EngagementService) SetLike(ctx context.Context, userID, postID uint, liked bool) (state *models.LikeState, err error) {
	action := "unlike"
	if liked {
		action = "like"
	}
	ctx, span := observability.StartSpan(ctx, "engagement", action)
	defer func() {
		observability.EndSpan(span, err)
		observability.EngagementWrites.WithLabelValues(action, observability.Result(err)).Inc()
	}()

	post, err := s.posts.GetVisible(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if liked {
		inserted, err := s.likes.Add(ctx, userID, postID)
		if err != nil {
			return nil, err
		}
		if inserted && post.UserID != userID {
			s.notifications.notifyQuietly(ctx, &models.Notification{
				UserID:        post.UserID,
				Type:          models.NotificationLike,
				Title:         "New Like",
				Message:       "Someone liked your post",
				RelatedUserID: uintPtr(userID),
				RelatedPostID: uintPtr(postID),
			})
		}
	} else if _, err := s.likes.Remove(ctx, userID, postID); err != nil {
		return nil, err
	}

	count, err := s.likes.Count(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &models.LikeState{PostID: postID, Liked: liked, LikesCount: count}, nil
}

// ToggleLike flips the caller's current like state.
func (s *EngagementService) ToggleLike(ctx context.Context, userID, postID uint) (*models.LikeState, error) {
	liked, err := s.likes.Exists(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	return s.SetLike(ctx, userID, postID, !liked)
}

// SetFollow makes followerID follow followingID or not.
func (s *EngagementService) SetFollow(ctx context.Context, followerID, followingID uint, follow bool) (state *models.FollowState, err error) {
	action := "unfollow"
	if follow {
		action = "follow"
	}
	ctx, span := observability.StartSpan(ctx, "engagement", action)
	defer func() {
		observability.EndSpan(span, err)
		observability.EngagementWrites.WithLabelValues(action, observability.Result(err)).Inc()
	}()

	if followerID == followingID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}
	exists, err := s.profiles.Exists(ctx, followingID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, models.NewNotFoundError("Profile", followingID)
	}

	if follow {
		inserted, err := s.follows.Add(ctx, followerID, followingID)
		if err != nil {
			return nil, err
		}
		if inserted {
			s.notifications.notifyQuietly(ctx, &models.Notification{
				UserID:        followingID,
				Type:          models.NotificationFollow,
				Title:         "New Follower",
				Message:       s.displayName(ctx, followerID) + " started following you",
				RelatedUserID: uintPtr(followerID),
			})
		}
	} else if _, err := s.follows.Remove(ctx, followerID, followingID); err != nil {
		return nil, err
	}

	count, err := s.follows.CountFollowers(ctx, followingID)
	if err != nil {
		return nil, err
	}
	return &models.FollowState{ProfileID: followingID, Following: follow, FollowersCount: count}, nil
}

// displayName falls back to "Someone" when the profile has no full name.
func (s *EngagementService) displayName(ctx context.Context, id uint) string {
	summaries, err := s.profiles.GetSummaries(ctx, []uint{id})
	if err != nil {
		return "Someone"
	}
	if p, ok := summaries[id]; ok && p.FullName != "" {
		return p.FullName
	}
	return "Someone"
}

// FollowStatus reports whether viewerID follows profileID.
func (s *EngagementService) FollowStatus(ctx context.Context, viewerID, profileID uint) (bool, error) {
	if viewerID == 0 || viewerID == profileID {
		return false, nil
	}
	return s.follows.Exists(ctx, viewerID, profileID)
}

// AddComment appends a comment to a post the caller can see.
func (s *EngagementService) AddComment(ctx context.Context, userID, postID uint, content string) (comment *models.Comment, err error) {
	defer func() {
		observability.EngagementWrites.WithLabelValues("comment", observability.Result(err)).Inc()
	}()

	content, err = validation.RequiredText("content", content, validation.MaxCommentLength)
	if err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	post, err := s.posts.GetVisible(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	comment = &models.Comment{UserID: userID, PostID: postID, Content: content}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}

	if post.UserID != userID {
		s.notifications.notifyQuietly(ctx, &models.Notification{
			UserID:        post.UserID,
			Type:          models.NotificationComment,
			Title:         "New Comment",
			Message:       "Someone commented on your post",
			RelatedUserID: uintPtr(userID),
			RelatedPostID: uintPtr(postID),
		})
	}
	return comment, nil
}

// ListComments returns a visible post's comments oldest first.
func (s *EngagementService) ListComments(ctx context.Context, postID, viewerID uint) ([]*models.Comment, error) {
	if _, err := s.posts.GetVisible(ctx, postID, viewerID); err != nil {
		return nil, err
	}
	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}
