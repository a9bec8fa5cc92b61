package engagement

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"skillsync/models"
	"skillsync/optimistic"
)

// Every mutation below follows the same optimistic policy: snapshot the
// aggregate, apply the change locally, call the server, then either confirm
// (swapping provisional IDs) or restore the exact pre-mutation snapshot.
// Rollbacks restore the whole aggregate rather than reversing arithmetic so
// concurrent edits can never compound into a skewed count.

func (s *Store) exists(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[itemID]
	return ok
}

func (s *Store) snapshot(itemID string) *Aggregate {
	s.mu.Lock()
	defer s.mu.Unlock()
	if agg, ok := s.items[itemID]; ok {
		return agg.clone()
	}
	return nil
}

func (s *Store) restore(itemID string, snap *Aggregate) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	if _, ok := s.items[itemID]; ok {
		s.items[itemID] = snap
	}
	s.mu.Unlock()
	// Re-broadcast so surfaces that saw the optimistic value re-converge.
	s.publish(itemID)
}

// ToggleLike flips the viewer's membership in the item's likes set. The
// direction is decided from the likes set at the moment the change applies,
// so rapid repeated toggles converge instead of double-counting.
func (s *Store) ToggleLike(ctx context.Context, itemID string) error {
	viewer := s.viewer()
	if viewer == "" {
		return models.NewAuthRequiredError("Please sign in to like progress updates")
	}
	if !s.exists(itemID) {
		return models.NewNotFoundError("Progress update", itemID)
	}

	var likeNow bool
	err := optimistic.Run(ctx, optimistic.Mutation[*Aggregate]{
		Name:     "toggleLike",
		Snapshot: func() *Aggregate { return s.snapshot(itemID) },
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			agg, ok := s.items[itemID]
			if !ok {
				return
			}
			likeNow = true
			for i, id := range agg.Item.Likes {
				if id == viewer {
					agg.Item.Likes = append(agg.Item.Likes[:i], agg.Item.Likes[i+1:]...)
					likeNow = false
					break
				}
			}
			if likeNow {
				agg.Item.Likes = append(agg.Item.Likes, viewer)
			}
			agg.recount()
		},
		Call: func(ctx context.Context) error {
			if likeNow {
				return s.client.LikeItem(ctx, itemID)
			}
			return s.client.UnlikeItem(ctx, itemID)
		},
		Restore:   func(snap *Aggregate) { s.restore(itemID, snap) },
		Discarded: func() bool { return !s.exists(itemID) },
	})
	if err == nil {
		s.publish(itemID)
	}
	return err
}

// AddComment appends a comment under a client-generated provisional ID, then
// swaps in the server-confirmed comment on success.
func (s *Store) AddComment(ctx context.Context, itemID, content string) (string, error) {
	viewer := s.viewer()
	if viewer == "" {
		return "", models.NewAuthRequiredError("Please sign in to comment on progress updates")
	}
	if strings.TrimSpace(content) == "" {
		return "", models.NewValidationError("Content is required")
	}
	if !s.exists(itemID) {
		return "", models.NewNotFoundError("Progress update", itemID)
	}

	provID := uuid.New().String()
	finalID := provID
	var created models.Comment
	err := optimistic.Run(ctx, optimistic.Mutation[*Aggregate]{
		Name:     "addComment",
		Snapshot: func() *Aggregate { return s.snapshot(itemID) },
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			agg, ok := s.items[itemID]
			if !ok {
				return
			}
			agg.Comments = append(agg.Comments, models.Comment{
				ID:          provID,
				ProgressID:  itemID,
				UserID:      viewer,
				Content:     content,
				Provisional: true,
			})
			agg.Replies[provID] = nil
			agg.ReplyPanel[provID] = PanelCollapsed
			agg.repliesLoaded[provID] = true
			agg.recount()
		},
		Call: func(ctx context.Context) error {
			var err error
			created, err = s.client.AddComment(ctx, itemID, content)
			return err
		},
		Confirm: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			agg, ok := s.items[itemID]
			if !ok {
				return
			}
			if c := agg.findComment(provID); c != nil {
				created.Provisional = false
				if created.ProgressID == "" {
					created.ProgressID = itemID
				}
				*c = created
				agg.Replies[created.ID] = agg.Replies[provID]
				agg.ReplyPanel[created.ID] = agg.ReplyPanel[provID]
				agg.repliesLoaded[created.ID] = true
				delete(agg.Replies, provID)
				delete(agg.ReplyPanel, provID)
				delete(agg.repliesLoaded, provID)
				finalID = created.ID
			}
			agg.recount()
		},
		Restore:   func(snap *Aggregate) { s.restore(itemID, snap) },
		Discarded: func() bool { return !s.exists(itemID) },
	})
	if err != nil {
		return "", err
	}
	s.publish(itemID)
	return finalID, nil
}

// EditComment updates a comment's body. Only the author may edit.
func (s *Store) EditComment(ctx context.Context, itemID, commentID, content string) error {
	viewer := s.viewer()
	if viewer == "" {
		return models.NewAuthRequiredError("Please sign in to update comments")
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}

	s.mu.Lock()
	agg, ok := s.items[itemID]
	if !ok {
		s.mu.Unlock()
		return models.NewNotFoundError("Progress update", itemID)
	}
	c := agg.findComment(commentID)
	if c == nil {
		s.mu.Unlock()
		return models.NewNotFoundError("Comment", commentID)
	}
	if c.UserID != viewer {
		s.mu.Unlock()
		return models.NewForbiddenError("You can only edit your own comments")
	}
	s.mu.Unlock()

	return optimistic.Run(ctx, optimistic.Mutation[*Aggregate]{
		Name:     "editComment",
		Snapshot: func() *Aggregate { return s.snapshot(itemID) },
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if agg, ok := s.items[itemID]; ok {
				if c := agg.findComment(commentID); c != nil {
					c.Content = content
					c.Edited = true
				}
			}
		},
		Call: func(ctx context.Context) error {
			return s.client.UpdateComment(ctx, commentID, content)
		},
		Restore:   func(snap *Aggregate) { s.restore(itemID, snap) },
		Discarded: func() bool { return !s.exists(itemID) },
	})
}

// DeleteComment removes a comment and its whole reply thread in one
// transition; the shared count drops by 1 + len(replies) atomically.
func (s *Store) DeleteComment(ctx context.Context, itemID, commentID string) error {
	viewer := s.viewer()
	if viewer == "" {
		return models.NewAuthRequiredError("Please sign in to delete comments")
	}

	s.mu.Lock()
	agg, ok := s.items[itemID]
	if !ok {
		s.mu.Unlock()
		return models.NewNotFoundError("Progress update", itemID)
	}
	c := agg.findComment(commentID)
	if c == nil {
		s.mu.Unlock()
		return models.NewNotFoundError("Comment", commentID)
	}
	if c.UserID != viewer {
		s.mu.Unlock()
		return models.NewForbiddenError("You can only delete your own comments")
	}
	s.mu.Unlock()

	err := optimistic.Run(ctx, optimistic.Mutation[*Aggregate]{
		Name:     "deleteComment",
		Snapshot: func() *Aggregate { return s.snapshot(itemID) },
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			agg, ok := s.items[itemID]
			if !ok {
				return
			}
			for i := range agg.Comments {
				if agg.Comments[i].ID == commentID {
					agg.Comments = append(agg.Comments[:i], agg.Comments[i+1:]...)
					break
				}
			}
			delete(agg.Replies, commentID)
			delete(agg.ReplyPanel, commentID)
			delete(agg.repliesLoaded, commentID)
			agg.recount()
		},
		Call: func(ctx context.Context) error {
			return s.client.DeleteComment(ctx, commentID)
		},
		Restore:   func(snap *Aggregate) { s.restore(itemID, snap) },
		Discarded: func() bool { return !s.exists(itemID) },
	})
	if err == nil {
		s.publish(itemID)
	}
	return err
}

// AddReply appends a reply under the parent comment. Replies share the
// item's comment count; there is no separate reply counter.
func (s *Store) AddReply(ctx context.Context, itemID, commentID, content string) (string, error) {
	viewer := s.viewer()
	if viewer == "" {
		return "", models.NewAuthRequiredError("Please sign in to reply to comments")
	}
	if strings.TrimSpace(content) == "" {
		return "", models.NewValidationError("Content is required")
	}

	s.mu.Lock()
	agg, ok := s.items[itemID]
	if !ok {
		s.mu.Unlock()
		return "", models.NewNotFoundError("Progress update", itemID)
	}
	if agg.findComment(commentID) == nil {
		s.mu.Unlock()
		return "", models.NewNotFoundError("Comment", commentID)
	}
	s.mu.Unlock()

	provID := uuid.New().String()
	finalID := provID
	var created models.Reply
	err := optimistic.Run(ctx, optimistic.Mutation[*Aggregate]{
		Name:     "addReply",
		Snapshot: func() *Aggregate { return s.snapshot(itemID) },
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			agg, ok := s.items[itemID]
			if !ok {
				return
			}
			agg.Replies[commentID] = append(agg.Replies[commentID], models.Reply{
				ID:          provID,
				CommentID:   commentID,
				UserID:      viewer,
				Content:     content,
				Provisional: true,
			})
			agg.repliesLoaded[commentID] = true
			// Adding a reply opens the thread, as the UI always has.
			agg.ReplyPanel[commentID] = PanelLoaded
			agg.recount()
		},
		Call: func(ctx context.Context) error {
			var err error
			created, err = s.client.AddReply(ctx, commentID, content)
			return err
		},
		Confirm: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			agg, ok := s.items[itemID]
			if !ok {
				return
			}
			if _, r := agg.findReply(provID); r != nil {
				created.Provisional = false
				if created.CommentID == "" {
					created.CommentID = commentID
				}
				*r = created
				finalID = created.ID
			}
		},
		Restore:   func(snap *Aggregate) { s.restore(itemID, snap) },
		Discarded: func() bool { return !s.exists(itemID) },
	})
	if err != nil {
		return "", err
	}
	s.publish(itemID)
	return finalID, nil
}

// EditReply updates a reply's body. Only the author may edit.
func (s *Store) EditReply(ctx context.Context, itemID, replyID, content string) error {
	viewer := s.viewer()
	if viewer == "" {
		return models.NewAuthRequiredError("Please sign in to update comments")
	}
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}

	s.mu.Lock()
	agg, ok := s.items[itemID]
	if !ok {
		s.mu.Unlock()
		return models.NewNotFoundError("Progress update", itemID)
	}
	_, r := agg.findReply(replyID)
	if r == nil {
		s.mu.Unlock()
		return models.NewNotFoundError("Reply", replyID)
	}
	if r.UserID != viewer {
		s.mu.Unlock()
		return models.NewForbiddenError("You can only edit your own comments")
	}
	s.mu.Unlock()

	return optimistic.Run(ctx, optimistic.Mutation[*Aggregate]{
		Name:     "editReply",
		Snapshot: func() *Aggregate { return s.snapshot(itemID) },
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if agg, ok := s.items[itemID]; ok {
				if _, r := agg.findReply(replyID); r != nil {
					r.Content = content
				}
			}
		},
		Call: func(ctx context.Context) error {
			return s.client.UpdateReply(ctx, replyID, content)
		},
		Restore:   func(snap *Aggregate) { s.restore(itemID, snap) },
		Discarded: func() bool { return !s.exists(itemID) },
	})
}

// DeleteReply removes one reply; the shared comment count drops by one.
func (s *Store) DeleteReply(ctx context.Context, itemID, replyID string) error {
	viewer := s.viewer()
	if viewer == "" {
		return models.NewAuthRequiredError("Please sign in to delete comments")
	}

	s.mu.Lock()
	agg, ok := s.items[itemID]
	if !ok {
		s.mu.Unlock()
		return models.NewNotFoundError("Progress update", itemID)
	}
	_, r := agg.findReply(replyID)
	if r == nil {
		s.mu.Unlock()
		return models.NewNotFoundError("Reply", replyID)
	}
	if r.UserID != viewer {
		s.mu.Unlock()
		return models.NewForbiddenError("You can only delete your own comments")
	}
	s.mu.Unlock()

	err := optimistic.Run(ctx, optimistic.Mutation[*Aggregate]{
		Name:     "deleteReply",
		Snapshot: func() *Aggregate { return s.snapshot(itemID) },
		Apply: func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			agg, ok := s.items[itemID]
			if !ok {
				return
			}
			for cid, replies := range agg.Replies {
				for i := range replies {
					if replies[i].ID == replyID {
						agg.Replies[cid] = append(replies[:i], replies[i+1:]...)
						agg.recount()
						return
					}
				}
			}
		},
		Call: func(ctx context.Context) error {
			return s.client.DeleteReply(ctx, replyID)
		},
		Restore:   func(snap *Aggregate) { s.restore(itemID, snap) },
		Discarded: func() bool { return !s.exists(itemID) },
	})
	if err == nil {
		s.publish(itemID)
	}
	return err
}
