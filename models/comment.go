package models

import (
	"time"

	"gorm.io/gorm"
)

// Comment represents a top-level remark on a progress update. A comment is
// never itself a reply; replies live in their own table and type.
type Comment struct {
	ID         string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	ProgressID string         `gorm:"not null;index" json:"progressId"`
	UserID     string         `gorm:"not null" json:"userId"`
	Username   string         `gorm:"-" json:"username"`
	Content    string         `gorm:"not null" json:"content"`
	Edited     bool           `json:"edited"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Provisional marks a locally created comment whose server-confirmed
	// identity has not arrived yet. Never serialized.
	Provisional bool `gorm:"-" json:"-"`
}

// Reply is a single-level response to a comment. A reply cannot have
// replies of its own.
type Reply struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CommentID string         `gorm:"not null;index" json:"commentId"`
	UserID    string         `gorm:"not null" json:"userId"`
	Username  string         `gorm:"-" json:"username"`
	Content   string         `gorm:"not null" json:"content"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Provisional bool `gorm:"-" json:"-"`
}
