package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillsync/cache"
	"skillsync/events"
	"skillsync/models"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestSignInExtractsSubjectClaim(t *testing.T) {
	sess := New(nil, nil)
	require.NoError(t, sess.SignIn(signedToken(t, jwt.MapClaims{"sub": "u1"})))

	assert.True(t, sess.SignedIn())
	assert.Equal(t, "u1", sess.CurrentUserID())
	assert.NotEmpty(t, sess.Token())
}

func TestSignInFallsBackToUserIDClaim(t *testing.T) {
	sess := New(nil, nil)
	require.NoError(t, sess.SignIn(signedToken(t, jwt.MapClaims{"userId": "u2"})))
	assert.Equal(t, "u2", sess.CurrentUserID())
}

func TestSignInRejectsBadTokens(t *testing.T) {
	sess := New(nil, nil)

	err := sess.SignIn("not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.CodeOf(err))

	err = sess.SignIn(signedToken(t, jwt.MapClaims{"exp": 9999999999}))
	require.Error(t, err, "token without an identity claim is rejected")
	assert.False(t, sess.SignedIn())
}

func TestLogoutResetsCacheAndBus(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	fc := cache.NewFollowCache(rdb)
	bus := events.NewBus()
	sess := New(fc, bus)

	require.NoError(t, sess.SignIn(signedToken(t, jwt.MapClaims{"sub": "u1"})))
	require.NoError(t, fc.Set(ctx, "u1", "s1", true))
	require.NoError(t, fc.Set(ctx, "other", "s1", true))

	var delivered int
	bus.SubscribeFollow(func(events.FollowStatusChanged) { delivered++ })

	require.NoError(t, sess.Logout(ctx))

	assert.False(t, sess.SignedIn())
	assert.Empty(t, sess.Token())

	// The viewer's cache keyspace is gone, other viewers' entries remain.
	_, known := fc.Get(ctx, "u1", "s1")
	assert.False(t, known)
	_, known = fc.Get(ctx, "other", "s1")
	assert.True(t, known)

	// Subscriptions from the old session no longer fire.
	bus.PublishFollow(events.FollowStatusChanged{Action: events.ActionFollow})
	assert.Zero(t, delivered)
}

func TestLogoutWhileSignedOutIsNoop(t *testing.T) {
	sess := New(nil, nil)
	assert.NoError(t, sess.Logout(context.Background()))
}
