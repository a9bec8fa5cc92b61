package models

import (
	"time"

	"gorm.io/gorm"
)

// ProgressUpdate is a content item users can like and comment on: a learning
// progress update or a post. Likes holds the IDs of users who liked it;
// LikeCount and CommentCount are derived and never persisted on their own.
type ProgressUpdate struct {
	ID        string   `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string   `gorm:"not null;index" json:"userId"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Likes     []string `gorm:"-" json:"likes"`
	LikeCount int      `gorm:"-" json:"likeCount"`
	// CommentCount includes replies: |comments| + sum of |replies(c)|
	CommentCount int            `gorm:"-" json:"commentCount"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Like represents a user's like on a progress update.
// The combination of UserID and ProgressID must be unique.
type Like struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID     string    `gorm:"not null;uniqueIndex:idx_like_user_progress" json:"userId"`
	ProgressID string    `gorm:"not null;uniqueIndex:idx_like_user_progress" json:"progressId"`
	CreatedAt  time.Time `json:"createdAt"`
}
