package models

import (
	"time"

	"gorm.io/gorm"
)

// Privacy settings for posts.
const (
	PrivacyPublic    = "public"
	PrivacyFollowers = "followers"
	PrivacyPrivate   = "private"
)

// Media types accepted for posts.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Post is a piece of skill content shared by a creator.
type Post struct {
	ID             uint     `gorm:"primaryKey" json:"id"`
	UserID         uint     `gorm:"not null;index" json:"user_id"`
	Author         *Profile `gorm:"foreignKey:UserID" json:"author,omitempty"`
	Content        string   `gorm:"type:text" json:"content"`
	MediaURL       string   `json:"media_url,omitempty"`
	MediaPath      string   `json:"-"`
	MediaType      string   `json:"media_type,omitempty"`
	SkillCategory  string   `gorm:"not null;index" json:"skill_category"`
	PrivacySetting string   `gorm:"not null;default:public;index" json:"privacy_setting"`
	// LikesCount is not persisted; computed at query time
	LikesCount int64 `gorm:"->;-:migration" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int64 `gorm:"->;-:migration" json:"comments_count"`
	// SharesCount is stored; a share leaves no row to count.
	SharesCount int64 `gorm:"not null;default:0" json:"shares_count"`
	// Liked is filled per viewer after the page is loaded
	Liked     bool           `gorm:"-" json:"liked"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsValidPrivacy reports whether p is a known privacy setting.
func IsValidPrivacy(p string) bool {
	switch p {
	case PrivacyPublic, PrivacyFollowers, PrivacyPrivate:
		return true
	}
	return false
}
