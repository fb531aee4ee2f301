package models

import (
	"time"
)

// Follow is a directed subscription: the user sees the author's posts in
// their personalized feed. A (user, author) pair exists at most once;
// self-follows are rejected at the write path.
type Follow struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_author" json:"user_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:idx_user_author" json:"author_id"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
