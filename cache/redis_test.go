package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectReturnsUsableClient(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb := Connect(mr.Addr())
	require.NotNil(t, rdb)
	t.Cleanup(func() { rdb.Close() })

	ctx := context.Background()
	fc := NewFollowCache(rdb)
	require.NoError(t, fc.Set(ctx, "v1", "s1", true))
	following, known := fc.Get(ctx, "v1", "s1")
	assert.True(t, known)
	assert.True(t, following)
}

func TestConnectDegradesToNilWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	assert.Nil(t, Connect(addr), "unreachable redis disables the cache instead of failing")
}
