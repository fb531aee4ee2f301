package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a text entry authored by a User, optionally attached to a Group
// and carrying an image. Posts are ordered newest first in every listing.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"not null" json:"text"`
	ImageURL string `json:"image_url,omitempty"`
	// AuthorID is immutable after creation; edits never touch it.
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    User           `gorm:"foreignKey:AuthorID" json:"author"`
	GroupID   *uint          `gorm:"index" json:"group_id,omitempty"`
	Group     *Group         `gorm:"foreignKey:GroupID" json:"group,omitempty"`
	Comments  []Comment      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"comments,omitempty"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
