// Package models contains data structures for the application's domain models.
package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents a member of the learning platform.
type User struct {
	ID        string         `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// UserRef is the lightweight user reference carried inside follower and
// following lists.
type UserRef struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// DisplayName returns the best human-readable name for a user reference,
// preferring the full name over the username.
func DisplayName(u UserRef) string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	case u.Username != "":
		return u.Username
	}
	return "Unknown User"
}

// Initials returns up to two uppercase initials for avatar rendering.
func Initials(u UserRef) string {
	first := firstRune(u.FirstName)
	last := firstRune(u.LastName)
	switch {
	case first != "" && last != "":
		return strings.ToUpper(first + last)
	case first != "":
		return strings.ToUpper(first)
	case last != "":
		return strings.ToUpper(last)
	}
	if r := firstRune(u.Username); r != "" {
		return strings.ToUpper(r)
	}
	return "?"
}

// firstRune returns the first rune of s as a string, so names in any script
// keep a valid initial.
func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
