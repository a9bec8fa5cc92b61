package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user UserRef
		want string
	}{
		{"full name", UserRef{FirstName: "Ada", LastName: "Lovelace", Username: "ada"}, "Ada Lovelace"},
		{"first only", UserRef{FirstName: "Ada", Username: "ada"}, "Ada"},
		{"last only", UserRef{LastName: "Lovelace", Username: "ada"}, "Lovelace"},
		{"username fallback", UserRef{Username: "ada"}, "ada"},
		{"empty", UserRef{}, "Unknown User"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DisplayName(tc.user))
		})
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name string
		user UserRef
		want string
	}{
		{"full name", UserRef{FirstName: "ada", LastName: "lovelace"}, "AL"},
		{"first only", UserRef{FirstName: "ada"}, "A"},
		{"username fallback", UserRef{Username: "zoe"}, "Z"},
		{"multi-byte runes", UserRef{FirstName: "åsa", LastName: "öberg"}, "ÅÖ"},
		{"multi-byte username", UserRef{Username: "żaneta"}, "Ż"},
		{"empty", UserRef{}, "?"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Initials(tc.user))
		})
	}
}

func TestFollowListContains(t *testing.T) {
	list := FollowList{Count: 2, Users: []UserRef{{ID: "u1"}, {ID: "u2"}}}
	assert.True(t, list.Contains("u2"))
	assert.False(t, list.Contains("u3"))
	assert.False(t, FollowList{}.Contains("u1"))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeAuthRequired, CodeOf(NewAuthRequiredError("sign in")))
	assert.Equal(t, CodeNotFound, CodeOf(NewNotFoundError("Comment", "c1")))
	assert.Equal(t, CodeInternal, CodeOf(assert.AnError))
}
