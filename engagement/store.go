// Package engagement maintains the per-item likes and comment-thread
// aggregates shared by every surface that renders a progress update.
package engagement

import (
	"context"
	"sync"

	"skillsync/api"
	"skillsync/events"
	"skillsync/models"
)

// PanelState tracks a comment panel (or a per-comment reply panel) through
// collapsed -> loading -> loaded. Re-collapsing keeps fetched data, so the
// next expand is instantaneous.
type PanelState string

const (
	PanelCollapsed PanelState = "collapsed"
	PanelLoading   PanelState = "loading"
	PanelLoaded    PanelState = "loaded"
)

// Aggregate is the full engagement state for one content item: the likes
// set, the two-level comment thread, and the panel state machines. Counts
// are derived and recomputed inside the same transition as every structural
// change, never adjusted with standalone arithmetic.
type Aggregate struct {
	Item       models.ProgressUpdate
	Comments   []models.Comment
	Replies    map[string][]models.Reply
	Panel      PanelState
	ReplyPanel map[string]PanelState

	repliesLoaded map[string]bool
	loaded        bool
}

func newAggregate(item models.ProgressUpdate) *Aggregate {
	return &Aggregate{
		Item:          item,
		Replies:       make(map[string][]models.Reply),
		Panel:         PanelCollapsed,
		ReplyPanel:    make(map[string]PanelState),
		repliesLoaded: make(map[string]bool),
	}
}

// clone makes a deep copy so snapshots and read accessors never alias the
// live state.
func (a *Aggregate) clone() *Aggregate {
	c := &Aggregate{
		Item:          a.Item,
		Panel:         a.Panel,
		loaded:        a.loaded,
		Comments:      make([]models.Comment, len(a.Comments)),
		Replies:       make(map[string][]models.Reply, len(a.Replies)),
		ReplyPanel:    make(map[string]PanelState, len(a.ReplyPanel)),
		repliesLoaded: make(map[string]bool, len(a.repliesLoaded)),
	}
	c.Item.Likes = append([]string(nil), a.Item.Likes...)
	copy(c.Comments, a.Comments)
	for k, v := range a.Replies {
		c.Replies[k] = append([]models.Reply(nil), v...)
	}
	for k, v := range a.ReplyPanel {
		c.ReplyPanel[k] = v
	}
	for k, v := range a.repliesLoaded {
		c.repliesLoaded[k] = v
	}
	return c
}

// recount restores the derived-count identities:
// likeCount == |likes| and commentCount == |comments| + sum |replies(c)|.
func (a *Aggregate) recount() {
	a.Item.LikeCount = len(a.Item.Likes)
	total := len(a.Comments)
	for _, c := range a.Comments {
		total += len(a.Replies[c.ID])
	}
	a.Item.CommentCount = total
}

func (a *Aggregate) findComment(commentID string) *models.Comment {
	for i := range a.Comments {
		if a.Comments[i].ID == commentID {
			return &a.Comments[i]
		}
	}
	return nil
}

// findReply locates a reply and its parent comment ID.
func (a *Aggregate) findReply(replyID string) (parentID string, reply *models.Reply) {
	for cid, replies := range a.Replies {
		for i := range replies {
			if replies[i].ID == replyID {
				return cid, &a.Replies[cid][i]
			}
		}
	}
	return "", nil
}

// Store is the process-wide owner of engagement aggregates. All state
// transitions run under its lock and always read the current state, never a
// value captured before a network round trip.
type Store struct {
	mu     sync.Mutex
	client api.Client
	bus    *events.Bus
	viewer func() string
	items  map[string]*Aggregate
}

// NewStore wires the store to the API client, the event bus, and a viewer
// accessor returning the signed-in user ID (empty when signed out).
func NewStore(client api.Client, bus *events.Bus, viewer func() string) *Store {
	if viewer == nil {
		viewer = func() string { return "" }
	}
	return &Store{
		client: client,
		bus:    bus,
		viewer: viewer,
		items:  make(map[string]*Aggregate),
	}
}

// Hydrate seeds (or reseeds) an aggregate from a feed payload. Counts from
// the payload are trusted until the comment panel is first expanded.
func (s *Store) Hydrate(item models.ProgressUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg := newAggregate(item)
	agg.recount()
	if item.CommentCount > agg.Item.CommentCount {
		// The feed knows about comments we have not loaded yet.
		agg.Item.CommentCount = item.CommentCount
	}
	s.items[item.ID] = agg
}

// Get returns a deep-copied snapshot of an aggregate for rendering.
func (s *Store) Get(itemID string) (Aggregate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, ok := s.items[itemID]
	if !ok {
		return Aggregate{}, false
	}
	return *agg.clone(), true
}

// Evict drops an aggregate, e.g. when the item is removed or every surface
// showing it unmounted. In-flight mutations against it are discarded on
// completion.
func (s *Store) Evict(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, itemID)
}

// Stats returns the derived counters for an item.
func (s *Store) Stats(itemID string) (likeCount, commentCount int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	agg, found := s.items[itemID]
	if !found {
		return 0, 0, false
	}
	return agg.Item.LikeCount, agg.Item.CommentCount, true
}

// publish broadcasts the current counters. Called without the lock held so
// listeners are free to read back from the store.
func (s *Store) publish(itemID string) {
	if s.bus == nil {
		return
	}
	s.mu.Lock()
	agg, ok := s.items[itemID]
	var ev events.EngagementChanged
	if ok {
		ev = events.EngagementChanged{
			ItemID:       itemID,
			LikeCount:    agg.Item.LikeCount,
			CommentCount: agg.Item.CommentCount,
		}
	}
	s.mu.Unlock()
	if ok {
		s.bus.PublishEngagement(ev)
	}
}

// ExpandComments opens the comment panel. The first expand fetches the
// comments and, like the feed UI always has, eagerly pulls each comment's
// replies so the thread count is right immediately. Later expands reuse the
// loaded thread; RefreshComments forces a re-fetch.
func (s *Store) ExpandComments(ctx context.Context, itemID string) error {
	s.mu.Lock()
	agg, ok := s.items[itemID]
	if !ok {
		s.mu.Unlock()
		return models.NewNotFoundError("Progress update", itemID)
	}
	if agg.loaded {
		agg.Panel = PanelLoaded
		s.mu.Unlock()
		return nil
	}
	agg.Panel = PanelLoading
	s.mu.Unlock()

	return s.loadComments(ctx, itemID)
}

// RefreshComments re-fetches the whole thread regardless of loaded state.
func (s *Store) RefreshComments(ctx context.Context, itemID string) error {
	s.mu.Lock()
	agg, ok := s.items[itemID]
	if !ok {
		s.mu.Unlock()
		return models.NewNotFoundError("Progress update", itemID)
	}
	agg.Panel = PanelLoading
	s.mu.Unlock()

	return s.loadComments(ctx, itemID)
}

func (s *Store) loadComments(ctx context.Context, itemID string) error {
	comments, err := s.client.GetComments(ctx, itemID)
	if err != nil {
		s.mu.Lock()
		if agg, ok := s.items[itemID]; ok {
			agg.Panel = PanelCollapsed
		}
		s.mu.Unlock()
		return err
	}

	replies := make(map[string][]models.Reply, len(comments))
	for _, c := range comments {
		r, err := s.client.GetReplies(ctx, c.ID)
		if err != nil {
			// A comment whose replies fail to load still renders; its
			// thread stays lazily loadable.
			continue
		}
		replies[c.ID] = r
	}

	s.mu.Lock()
	agg, ok := s.items[itemID]
	if !ok {
		// Surface went away while loading; nothing to apply the result to.
		s.mu.Unlock()
		return nil
	}
	agg.Comments = comments
	agg.Replies = make(map[string][]models.Reply, len(replies))
	agg.ReplyPanel = make(map[string]PanelState, len(comments))
	agg.repliesLoaded = make(map[string]bool, len(comments))
	for _, c := range comments {
		rs, fetched := replies[c.ID]
		if fetched {
			agg.Replies[c.ID] = rs
			agg.repliesLoaded[c.ID] = true
		}
		// Threads that already have replies start expanded.
		if len(rs) > 0 {
			agg.ReplyPanel[c.ID] = PanelLoaded
		} else {
			agg.ReplyPanel[c.ID] = PanelCollapsed
		}
	}
	agg.Panel = PanelLoaded
	agg.loaded = true
	agg.recount()
	s.mu.Unlock()

	s.publish(itemID)
	return nil
}

// CollapseComments closes the panel without discarding fetched data.
func (s *Store) CollapseComments(itemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if agg, ok := s.items[itemID]; ok && agg.Panel == PanelLoaded {
		agg.Panel = PanelCollapsed
	}
}

// ExpandReplies opens one comment's reply thread, fetching it on first use.
// Once loaded, the local reply list is the addressable cache for later edits
// and deletes; a second expand never re-fetches unless RefreshReplies is
// called.
func (s *Store) ExpandReplies(ctx context.Context, itemID, commentID string) error {
	s.mu.Lock()
	agg, ok := s.items[itemID]
	if !ok {
		s.mu.Unlock()
		return models.NewNotFoundError("Progress update", itemID)
	}
	if agg.findComment(commentID) == nil {
		s.mu.Unlock()
		return models.NewNotFoundError("Comment", commentID)
	}
	if agg.repliesLoaded[commentID] {
		agg.ReplyPanel[commentID] = PanelLoaded
		s.mu.Unlock()
		return nil
	}
	agg.ReplyPanel[commentID] = PanelLoading
	s.mu.Unlock()

	return s.loadReplies(ctx, itemID, commentID)
}

// RefreshReplies re-fetches one comment's reply thread.
func (s *Store) RefreshReplies(ctx context.Context, itemID, commentID string) error {
	s.mu.Lock()
	if agg, ok := s.items[itemID]; ok {
		agg.ReplyPanel[commentID] = PanelLoading
	}
	s.mu.Unlock()
	return s.loadReplies(ctx, itemID, commentID)
}

func (s *Store) loadReplies(ctx context.Context, itemID, commentID string) error {
	replies, err := s.client.GetReplies(ctx, commentID)
	if err != nil {
		s.mu.Lock()
		if agg, ok := s.items[itemID]; ok {
			agg.ReplyPanel[commentID] = PanelCollapsed
		}
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	agg, ok := s.items[itemID]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	agg.Replies[commentID] = replies
	agg.repliesLoaded[commentID] = true
	agg.ReplyPanel[commentID] = PanelLoaded
	agg.recount()
	s.mu.Unlock()

	s.publish(itemID)
	return nil
}

// CollapseReplies closes a reply thread, keeping its fetched replies.
func (s *Store) CollapseReplies(itemID, commentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if agg, ok := s.items[itemID]; ok && agg.ReplyPanel[commentID] == PanelLoaded {
		agg.ReplyPanel[commentID] = PanelCollapsed
	}
}
