package models

import "time"

// Notification types.
const (
	NotificationWelcome    = "welcome"
	NotificationLike       = "like"
	NotificationComment    = "comment"
	NotificationFollow     = "follow"
	NotificationMessage    = "message"
	// NotificationContent is a self-notification about the owner's own post.
	NotificationContent = "content"
)

// Notification is addressed to UserID and optionally points at the user and
// post that caused it.
type Notification struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;index:idx_notifications_user_read" json:"user_id"`
	Type          string    `gorm:"not null" json:"type"`
	Title         string    `gorm:"not null" json:"title"`
	Message       string    `gorm:"type:text" json:"message"`
	Read          bool      `gorm:"not null;default:false;index:idx_notifications_user_read" json:"read"`
	RelatedUserID *uint     `json:"related_user_id,omitempty"`
	RelatedUser   *Profile  `gorm:"foreignKey:RelatedUserID" json:"related_user,omitempty"`
	RelatedPostID *uint     `json:"related_post_id,omitempty"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

// BadgeCounts feeds the navigation bar.
type BadgeCounts struct {
	Notifications int64 `json:"notifications"`
	Messages      int64 `json:"messages"`
}
