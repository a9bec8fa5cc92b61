package follow

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync/api"
	"skillsync/cache"
	"skillsync/events"
	"skillsync/models"
)

type fakeClient struct {
	isFollowingFn  func(ctx context.Context, viewerID, subjectID string) (api.FollowStatus, error)
	getFollowersFn func(ctx context.Context, userID string) (models.FollowList, error)
	getFollowingFn func(ctx context.Context, userID string) (models.FollowList, error)
	followFn       func(ctx context.Context, subjectID string) (api.ActionResult, error)
	unfollowFn     func(ctx context.Context, subjectID string) (api.ActionResult, error)

	isFollowingCalls int
}

func (f *fakeClient) IsFollowing(ctx context.Context, viewerID, subjectID string) (api.FollowStatus, error) {
	f.isFollowingCalls++
	if f.isFollowingFn != nil {
		return f.isFollowingFn(ctx, viewerID, subjectID)
	}
	return api.FollowStatus{}, nil
}

func (f *fakeClient) GetFollowers(ctx context.Context, userID string) (models.FollowList, error) {
	if f.getFollowersFn != nil {
		return f.getFollowersFn(ctx, userID)
	}
	return models.FollowList{}, nil
}

func (f *fakeClient) GetFollowing(ctx context.Context, userID string) (models.FollowList, error) {
	if f.getFollowingFn != nil {
		return f.getFollowingFn(ctx, userID)
	}
	return models.FollowList{}, nil
}

func (f *fakeClient) FollowUser(ctx context.Context, subjectID string) (api.ActionResult, error) {
	if f.followFn != nil {
		return f.followFn(ctx, subjectID)
	}
	return api.ActionResult{Success: true}, nil
}

func (f *fakeClient) UnfollowUser(ctx context.Context, subjectID string) (api.ActionResult, error) {
	if f.unfollowFn != nil {
		return f.unfollowFn(ctx, subjectID)
	}
	return api.ActionResult{Success: true}, nil
}

func (f *fakeClient) GetComments(ctx context.Context, itemID string) ([]models.Comment, error) {
	return nil, nil
}
func (f *fakeClient) AddComment(ctx context.Context, itemID, content string) (models.Comment, error) {
	return models.Comment{}, nil
}
func (f *fakeClient) UpdateComment(ctx context.Context, id, content string) error { return nil }
func (f *fakeClient) DeleteComment(ctx context.Context, id string) error          { return nil }
func (f *fakeClient) GetReplies(ctx context.Context, commentID string) ([]models.Reply, error) {
	return nil, nil
}
func (f *fakeClient) AddReply(ctx context.Context, commentID, content string) (models.Reply, error) {
	return models.Reply{}, nil
}
func (f *fakeClient) UpdateReply(ctx context.Context, id, content string) error { return nil }
func (f *fakeClient) DeleteReply(ctx context.Context, id string) error          { return nil }
func (f *fakeClient) LikeItem(ctx context.Context, itemID string) error         { return nil }
func (f *fakeClient) UnlikeItem(ctx context.Context, itemID string) error       { return nil }

var _ api.Client = (*fakeClient)(nil)

func newTestCache(t *testing.T) *cache.FollowCache {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return cache.NewFollowCache(rdb)
}

func viewerFn(id string) func() string {
	return func() string { return id }
}

func TestFollowPropagatesToAllSubscribersOnce(t *testing.T) {
	ctx := context.Background()
	fc := newTestCache(t)
	bus := events.NewBus()
	client := &fakeClient{}
	svc := NewService(client, fc, bus, viewerFn("viewer"))

	var first, second []events.FollowStatusChanged
	bus.SubscribeFollow(func(ev events.FollowStatusChanged) { first = append(first, ev) })
	bus.SubscribeFollow(func(ev events.FollowStatusChanged) { second = append(second, ev) })

	require.NoError(t, svc.Follow(ctx, "subject"))

	want := events.FollowStatusChanged{Action: events.ActionFollow, ActorID: "viewer", SubjectID: "subject"}
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, want, first[0])
	assert.Equal(t, want, second[0])

	// Any surface can now answer from the cache without a network call.
	following, known := svc.GetFollowState(ctx, "subject")
	assert.True(t, known)
	assert.True(t, following)
	assert.Zero(t, client.isFollowingCalls)
}

func TestFollowRollbackRevertsCacheAndRebroadcasts(t *testing.T) {
	ctx := context.Background()
	fc := newTestCache(t)
	bus := events.NewBus()
	client := &fakeClient{
		followFn: func(ctx context.Context, subjectID string) (api.ActionResult, error) {
			return api.ActionResult{}, errors.New("boom")
		},
	}
	svc := NewService(client, fc, bus, viewerFn("viewer"))

	var seen []events.FollowStatusChanged
	bus.SubscribeFollow(func(ev events.FollowStatusChanged) { seen = append(seen, ev) })

	require.Error(t, svc.Follow(ctx, "subject"))

	// Optimistic follow, then the revert.
	require.Len(t, seen, 2)
	assert.Equal(t, events.ActionFollow, seen[0].Action)
	assert.Equal(t, events.ActionUnfollow, seen[1].Action)

	// The cache entry was unknown before, so rollback removes it entirely.
	_, known := svc.GetFollowState(ctx, "subject")
	assert.False(t, known)
}

func TestUnfollowRollbackRestoresKnownTrue(t *testing.T) {
	ctx := context.Background()
	fc := newTestCache(t)
	bus := events.NewBus()
	client := &fakeClient{
		unfollowFn: func(ctx context.Context, subjectID string) (api.ActionResult, error) {
			return api.ActionResult{}, errors.New("boom")
		},
	}
	svc := NewService(client, fc, bus, viewerFn("viewer"))
	require.NoError(t, svc.SetFollowState(ctx, "subject", true))

	var seen []events.FollowStatusChanged
	bus.SubscribeFollow(func(ev events.FollowStatusChanged) { seen = append(seen, ev) })

	require.Error(t, svc.Unfollow(ctx, "subject"))

	require.Len(t, seen, 2)
	assert.Equal(t, events.ActionUnfollow, seen[0].Action)
	assert.Equal(t, events.ActionFollow, seen[1].Action)

	following, known := svc.GetFollowState(ctx, "subject")
	assert.True(t, known)
	assert.True(t, following)
}

func TestFollowRejectedByServerRollsBack(t *testing.T) {
	ctx := context.Background()
	fc := newTestCache(t)
	client := &fakeClient{
		followFn: func(ctx context.Context, subjectID string) (api.ActionResult, error) {
			return api.ActionResult{Success: false, Message: "blocked"}, nil
		},
	}
	svc := NewService(client, fc, events.NewBus(), viewerFn("viewer"))

	err := svc.Follow(ctx, "subject")
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.CodeOf(err))
	_, known := svc.GetFollowState(ctx, "subject")
	assert.False(t, known)
}

func TestFollowGuards(t *testing.T) {
	ctx := context.Background()
	fc := newTestCache(t)

	signedOut := NewService(&fakeClient{}, fc, events.NewBus(), viewerFn(""))
	err := signedOut.Follow(ctx, "subject")
	require.Error(t, err)
	assert.Equal(t, models.CodeAuthRequired, models.CodeOf(err))

	self := NewService(&fakeClient{}, fc, events.NewBus(), viewerFn("me"))
	err = self.Follow(ctx, "me")
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.CodeOf(err))
}

func TestReconcileDirectLookupWins(t *testing.T) {
	ctx := context.Background()
	fc := newTestCache(t)
	client := &fakeClient{
		isFollowingFn: func(ctx context.Context, viewerID, subjectID string) (api.FollowStatus, error) {
			return api.FollowStatus{IsFollowing: true}, nil
		},
		getFollowingFn: func(ctx context.Context, userID string) (models.FollowList, error) {
			t.Fatal("list scan must not run when the direct lookup answers")
			return models.FollowList{}, nil
		},
	}
	svc := NewService(client, fc, events.NewBus(), viewerFn("viewer"))

	following, err := svc.Reconcile(ctx, "subject")
	require.NoError(t, err)
	assert.True(t, following)

	// Written back to the cache.
	v, known := svc.GetFollowState(ctx, "subject")
	assert.True(t, known)
	assert.True(t, v)
}

func TestReconcileFallsBackToFollowingScan(t *testing.T) {
	ctx := context.Background()
	fc := newTestCache(t)
	client := &fakeClient{
		isFollowingFn: func(ctx context.Context, viewerID, subjectID string) (api.FollowStatus, error) {
			return api.FollowStatus{}, errors.New("endpoint gone")
		},
		getFollowingFn: func(ctx context.Context, userID string) (models.FollowList, error) {
			return models.FollowList{Count: 1, Users: []models.UserRef{{ID: "subject"}}}, nil
		},
	}
	svc := NewService(client, fc, events.NewBus(), viewerFn("viewer"))

	following, err := svc.Reconcile(ctx, "subject")
	require.NoError(t, err)
	assert.True(t, following)
}

func TestReconcileSkipsInconclusiveList(t *testing.T) {
	ctx := context.Background()
	fc := newTestCache(t)
	client := &fakeClient{
		isFollowingFn: func(ctx context.Context, viewerID, subjectID string) (api.FollowStatus, error) {
			return api.FollowStatus{}, errors.New("endpoint gone")
		},
		// Count-only response: claims one follow but ships no entries.
		getFollowingFn: func(ctx context.Context, userID string) (models.FollowList, error) {
			return models.FollowList{Count: 1}, nil
		},
		getFollowersFn: func(ctx context.Context, userID string) (models.FollowList, error) {
			return models.FollowList{Count: 1, Users: []models.UserRef{{ID: "viewer"}}}, nil
		},
	}
	svc := NewService(client, fc, events.NewBus(), viewerFn("viewer"))

	following, err := svc.Reconcile(ctx, "subject")
	require.NoError(t, err)
	assert.True(t, following, "followers scan should answer when the following scan is inconclusive")
}

func TestReconcileFallsBackToCachedValue(t *testing.T) {
	ctx := context.Background()
	fc := newTestCache(t)
	fail := errors.New("down")
	client := &fakeClient{
		isFollowingFn: func(ctx context.Context, viewerID, subjectID string) (api.FollowStatus, error) {
			return api.FollowStatus{}, fail
		},
		getFollowingFn: func(ctx context.Context, userID string) (models.FollowList, error) {
			return models.FollowList{}, fail
		},
		getFollowersFn: func(ctx context.Context, userID string) (models.FollowList, error) {
			return models.FollowList{}, fail
		},
	}
	svc := NewService(client, fc, events.NewBus(), viewerFn("viewer"))

	// No cache entry: default false, no error.
	following, err := svc.Reconcile(ctx, "subject")
	require.NoError(t, err)
	assert.False(t, following)

	// With a cached fact, the fact wins.
	require.NoError(t, svc.SetFollowState(ctx, "subject", true))
	following, err = svc.Reconcile(ctx, "subject")
	require.NoError(t, err)
	assert.True(t, following)
}

func TestCounts(t *testing.T) {
	ctx := context.Background()
	client := &fakeClient{
		getFollowersFn: func(ctx context.Context, userID string) (models.FollowList, error) {
			return models.FollowList{Count: 3}, nil
		},
		getFollowingFn: func(ctx context.Context, userID string) (models.FollowList, error) {
			return models.FollowList{Count: 7}, nil
		},
	}
	svc := NewService(client, newTestCache(t), events.NewBus(), viewerFn("viewer"))

	followers, following, err := svc.Counts(ctx, "someone")
	require.NoError(t, err)
	assert.Equal(t, 3, followers)
	assert.Equal(t, 7, following)
}
