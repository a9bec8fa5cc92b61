// Package api defines the contract the synchronization core consumes from
// the backend, plus its HTTP implementation.
package api

import (
	"context"

	"skillsync/models"
)

// FollowStatus is the direct relationship query result.
type FollowStatus struct {
	IsFollowing bool `json:"isFollowing"`
}

// ActionResult is the generic mutation acknowledgment for follow/unfollow.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// Client enumerates the server operations the core depends on. The concrete
// transport lives behind this interface so stores and services can be tested
// against fakes.
type Client interface {
	IsFollowing(ctx context.Context, viewerID, subjectID string) (FollowStatus, error)
	GetFollowers(ctx context.Context, userID string) (models.FollowList, error)
	GetFollowing(ctx context.Context, userID string) (models.FollowList, error)
	FollowUser(ctx context.Context, subjectID string) (ActionResult, error)
	UnfollowUser(ctx context.Context, subjectID string) (ActionResult, error)

	GetComments(ctx context.Context, itemID string) ([]models.Comment, error)
	AddComment(ctx context.Context, itemID, content string) (models.Comment, error)
	UpdateComment(ctx context.Context, commentID, content string) error
	DeleteComment(ctx context.Context, commentID string) error

	GetReplies(ctx context.Context, commentID string) ([]models.Reply, error)
	AddReply(ctx context.Context, commentID, content string) (models.Reply, error)
	UpdateReply(ctx context.Context, replyID, content string) error
	DeleteReply(ctx context.Context, replyID string) error

	LikeItem(ctx context.Context, itemID string) error
	UnlikeItem(ctx context.Context, itemID string) error
}
