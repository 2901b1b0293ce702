package models

import "time"

// Like is a (user, post) pair. The unique index makes inserts idempotent.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_likes_user_post;index" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Follow is a (follower, following) pair.
type Follow struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FollowerID  uint      `gorm:"not null;uniqueIndex:idx_follows_pair" json:"follower_id"`
	FollowingID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index" json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// Comment is append-only.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Author    *Profile  `gorm:"foreignKey:UserID" json:"author,omitempty"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeState is returned by like mutations.
type LikeState struct {
	PostID     uint  `json:"post_id"`
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likes_count"`
}

// FollowState is returned by follow mutations.
type FollowState struct {
	ProfileID      uint  `json:"profile_id"`
	Following      bool  `json:"following"`
	FollowersCount int64 `json:"followers_count"`
}

// ShareState is returned when a post is shared.
type ShareState struct {
	PostID      uint  `json:"post_id"`
	SharesCount int64 `json:"shares_count"`
}
