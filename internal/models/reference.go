package models

import "time"

// Reference types.
const (
	ReferenceDocument = "document"
	ReferenceLink     = "link"
)

// Reference is a portfolio attachment owned by a profile.
type Reference struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Type        string    `gorm:"not null" json:"type"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	URL         string    `json:"url,omitempty"`
	FilePath    string    `json:"file_path,omitempty"`
	FileName    string    `json:"file_name,omitempty"`
	FileSize    int64     `json:"file_size,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName keeps clear of the REFERENCES keyword in raw SQL.
func (Reference) TableName() string {
	return "portfolio_references"
}
