// Package session tracks the signed-in viewer for the lifetime of the
// process and owns the wholesale reset performed on logout.
package session

import (
	"context"
	"sync"

	"github.com/golang-jwt/jwt/v5"

	"skillsync/cache"
	"skillsync/events"
	"skillsync/models"
)

// Session holds the current bearer token and the viewer ID extracted from
// it. The shared relationship cache and event bus are reset through it on
// logout.
type Session struct {
	mu     sync.RWMutex
	token  string
	userID string

	cache *cache.FollowCache
	bus   *events.Bus
}

func New(fc *cache.FollowCache, bus *events.Bus) *Session {
	return &Session{cache: fc, bus: bus}
}

// SignIn stores the token and extracts the viewer ID from its claims. The
// signature is not verified here; the server did that when it issued the
// token, the client only needs the identity inside it.
func (s *Session) SignIn(token string) error {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return models.NewValidationError("Invalid session token")
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		userID, _ = claims["userId"].(string)
	}
	if userID == "" {
		return models.NewValidationError("Session token carries no user identity")
	}

	s.mu.Lock()
	s.token = token
	s.userID = userID
	s.mu.Unlock()
	return nil
}

// Token returns the current bearer token, or empty when signed out.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// CurrentUserID returns the signed-in viewer's ID, or empty when signed out.
func (s *Session) CurrentUserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// SignedIn reports whether a viewer is signed in.
func (s *Session) SignedIn() bool {
	return s.CurrentUserID() != ""
}

// Logout clears the viewer's relationship cache keyspace, drops every bus
// subscription, and forgets the token.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	userID := s.userID
	s.token = ""
	s.userID = ""
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Reset()
	}
	if s.cache != nil && userID != "" {
		return s.cache.ResetViewer(ctx, userID)
	}
	return nil
}
