// Package follow manages follow relationships: the persisted per-viewer
// cache, optimistic follow/unfollow, and reconciliation against the server.
package follow

import (
	"context"
	"log/slog"

	"skillsync/api"
	"skillsync/cache"
	"skillsync/events"
	"skillsync/logging"
	"skillsync/models"
	"skillsync/optimistic"
)

// Service coordinates the relationship cache, the event bus, and the API
// client for the signed-in viewer.
type Service struct {
	client api.Client
	cache  *cache.FollowCache
	bus    *events.Bus
	viewer func() string
}

// NewService wires the follow service. viewer returns the signed-in user ID
// or empty when signed out.
func NewService(client api.Client, fc *cache.FollowCache, bus *events.Bus, viewer func() string) *Service {
	if viewer == nil {
		viewer = func() string { return "" }
	}
	return &Service{client: client, cache: fc, bus: bus, viewer: viewer}
}

// GetFollowState returns the cached relationship between the viewer and the
// subject. known is false when the cache has no entry, in which case callers
// should Reconcile.
func (s *Service) GetFollowState(ctx context.Context, subjectID string) (following bool, known bool) {
	viewer := s.viewer()
	if viewer == "" {
		return false, false
	}
	return s.cache.Get(ctx, viewer, subjectID)
}

// SetFollowState writes a relationship fact straight through to the
// persistent cache.
func (s *Service) SetFollowState(ctx context.Context, subjectID string, following bool) error {
	viewer := s.viewer()
	if viewer == "" {
		return models.NewAuthRequiredError("Please sign in to follow users")
	}
	return s.cache.Set(ctx, viewer, subjectID, following)
}

// Follow optimistically marks the subject as followed, notifies every
// surface, then confirms with the server. On failure the cache entry is
// reverted and the reverted state is re-broadcast so subscribers converge.
func (s *Service) Follow(ctx context.Context, subjectID string) error {
	return s.setEdge(ctx, subjectID, true)
}

// Unfollow is the inverse of Follow with the same optimistic discipline.
func (s *Service) Unfollow(ctx context.Context, subjectID string) error {
	return s.setEdge(ctx, subjectID, false)
}

type cacheSnapshot struct {
	value bool
	known bool
}

func (s *Service) setEdge(ctx context.Context, subjectID string, following bool) error {
	viewer := s.viewer()
	if viewer == "" {
		return models.NewAuthRequiredError("Please sign in to follow users")
	}
	if viewer == subjectID {
		return models.NewValidationError("Cannot follow yourself")
	}

	action := events.ActionFollow
	name := "follow"
	if !following {
		action = events.ActionUnfollow
		name = "unfollow"
	}

	return optimistic.Run(ctx, optimistic.Mutation[cacheSnapshot]{
		Name: name,
		Snapshot: func() cacheSnapshot {
			v, known := s.cache.Get(ctx, viewer, subjectID)
			return cacheSnapshot{value: v, known: known}
		},
		Apply: func() {
			_ = s.cache.Set(ctx, viewer, subjectID, following)
			s.bus.PublishFollow(events.FollowStatusChanged{
				Action:    action,
				ActorID:   viewer,
				SubjectID: subjectID,
			})
		},
		Call: func(ctx context.Context) error {
			var res api.ActionResult
			var err error
			if following {
				res, err = s.client.FollowUser(ctx, subjectID)
			} else {
				res, err = s.client.UnfollowUser(ctx, subjectID)
			}
			if err != nil {
				return err
			}
			if !res.Success {
				msg := res.Message
				if msg == "" {
					msg = "Follow request was rejected"
				}
				return models.NewValidationError(msg)
			}
			return nil
		},
		Restore: func(snap cacheSnapshot) {
			if snap.known {
				_ = s.cache.Set(ctx, viewer, subjectID, snap.value)
			} else {
				_ = s.cache.Delete(ctx, viewer, subjectID)
			}
			reverted := events.ActionUnfollow
			if snap.known && snap.value {
				reverted = events.ActionFollow
			}
			s.bus.PublishFollow(events.FollowStatusChanged{
				Action:    reverted,
				ActorID:   viewer,
				SubjectID: subjectID,
			})
		},
	})
}

// Counts mirrors the server's follower/following aggregates for a profile
// surface.
func (s *Service) Counts(ctx context.Context, userID string) (followers, following int, err error) {
	fl, err := s.client.GetFollowers(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	fg, err := s.client.GetFollowing(ctx, userID)
	if err != nil {
		return 0, 0, err
	}
	return fl.Count, fg.Count, nil
}

// Reconcile determines the authoritative follow state for the viewer and
// subject, trying in order: the direct relationship endpoint, a scan of the
// viewer's following list, a scan of the subject's followers list, and
// finally the last cached value (false if none). The direct endpoint is the
// cheapest and most authoritative per call; the list scans cover backends
// where it is unreliable or missing. A conclusive answer short-circuits the
// chain and is written back to the cache.
func (s *Service) Reconcile(ctx context.Context, subjectID string) (bool, error) {
	viewer := s.viewer()
	if viewer == "" {
		return false, models.NewAuthRequiredError("Please sign in to follow users")
	}

	if st, err := s.client.IsFollowing(ctx, viewer, subjectID); err == nil {
		_ = s.cache.Set(ctx, viewer, subjectID, st.IsFollowing)
		return st.IsFollowing, nil
	} else {
		logging.Logger.Warn("direct follow lookup failed, falling back to list scan",
			slog.String("subject", subjectID),
			slog.String("error", err.Error()))
	}

	if list, err := s.client.GetFollowing(ctx, viewer); err == nil && conclusive(list) {
		result := list.Contains(subjectID)
		_ = s.cache.Set(ctx, viewer, subjectID, result)
		return result, nil
	}

	if list, err := s.client.GetFollowers(ctx, subjectID); err == nil && conclusive(list) {
		result := list.Contains(viewer)
		_ = s.cache.Set(ctx, viewer, subjectID, result)
		return result, nil
	}

	// Everything failed; fall back to the last cached value rather than
	// erroring outright.
	v, known := s.cache.Get(ctx, viewer, subjectID)
	if !known {
		return false, nil
	}
	return v, nil
}

// conclusive reports whether a list response can answer a membership
// question. A response that claims entries exist but carries none (a
// count-only endpoint) cannot.
func conclusive(list models.FollowList) bool {
	return list.Count == len(list.Users)
}
