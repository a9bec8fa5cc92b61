// Package events provides the in-process publish/subscribe bus that keeps
// independently mounted surfaces in sync without a shared owning component.
package events

import "sync"

// FollowAction distinguishes follow from unfollow notifications.
type FollowAction string

const (
	ActionFollow   FollowAction = "follow"
	ActionUnfollow FollowAction = "unfollow"
)

// FollowStatusChanged is published whenever a follow edge flips, including
// the optimistic flip and any rollback after a failed server call.
type FollowStatusChanged struct {
	Action    FollowAction
	ActorID   string
	SubjectID string
}

// EngagementChanged is published after a like or comment mutation settles so
// other surfaces can update their counters without re-fetching.
type EngagementChanged struct {
	ItemID       string
	LikeCount    int
	CommentCount int
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// Bus is a synchronous fire-and-forget bus. Listeners run in subscription
// order before Publish returns; there is no delivery guarantee beyond that.
// The same event can reach a listener twice when two call sites publish the
// same fact, so handlers must apply-if-different rather than blindly
// increment.
type Bus struct {
	mu         sync.Mutex
	nextID     int
	followSubs []subscriber[FollowStatusChanged]
	engageSubs []subscriber[EngagementChanged]
}

func NewBus() *Bus {
	return &Bus{}
}

// SubscribeFollow registers a listener for FollowStatusChanged events and
// returns its unsubscribe function.
func (b *Bus) SubscribeFollow(fn func(FollowStatusChanged)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.followSubs = append(b.followSubs, subscriber[FollowStatusChanged]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.followSubs {
			if s.id == id {
				b.followSubs = append(b.followSubs[:i], b.followSubs[i+1:]...)
				return
			}
		}
	}
}

// SubscribeEngagement registers a listener for EngagementChanged events and
// returns its unsubscribe function.
func (b *Bus) SubscribeEngagement(fn func(EngagementChanged)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.engageSubs = append(b.engageSubs, subscriber[EngagementChanged]{id: id, fn: fn})
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, s := range b.engageSubs {
			if s.id == id {
				b.engageSubs = append(b.engageSubs[:i], b.engageSubs[i+1:]...)
				return
			}
		}
	}
}

// PublishFollow delivers the event to all current follow listeners.
func (b *Bus) PublishFollow(ev FollowStatusChanged) {
	b.mu.Lock()
	subs := make([]subscriber[FollowStatusChanged], len(b.followSubs))
	copy(subs, b.followSubs)
	b.mu.Unlock()
	for _, s := range subs {
		s.fn(ev)
	}
}

// PublishEngagement delivers the event to all current engagement listeners.
func (b *Bus) PublishEngagement(ev EngagementChanged) {
	b.mu.Lock()
	subs := make([]subscriber[EngagementChanged], len(b.engageSubs))
	copy(subs, b.engageSubs)
	b.mu.Unlock()
	for _, s := range subs {
		s.fn(ev)
	}
}

// Reset drops every subscription. Invoked on logout together with the
// relationship cache reset.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.followSubs = nil
	b.engageSubs = nil
}
