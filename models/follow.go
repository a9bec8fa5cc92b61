package models

import (
	"time"
)

// Follow represents a directed follow edge (follower -> followee).
// The combination of FollowerID and FolloweeID must be unique so that
// repeated follow requests stay idempotent.
type Follow struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	FollowerID string    `gorm:"not null;uniqueIndex:idx_follow_pair" json:"followerId"`
	FolloweeID string    `gorm:"not null;uniqueIndex:idx_follow_pair" json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}

// FollowList is the follower/following payload returned by the API: a count
// plus the user references behind it.
type FollowList struct {
	Count int       `json:"count"`
	Users []UserRef `json:"users"`
}

// Contains reports whether the list includes the given user ID.
func (l FollowList) Contains(userID string) bool {
	for _, u := range l.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}
