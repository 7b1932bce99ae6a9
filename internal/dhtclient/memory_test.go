package dhtclient

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-diddht/pkg/types"
)

// testKey 返回第 n 个合法存储键
func testKey(n byte) []byte {
	return bytes.Repeat([]byte{n}, types.StorageKeySize)
}

func TestMemoryClient_PutGet(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()

	_, err := c.Get(ctx, testKey(1))
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, c.Put(ctx, testKey(1), []byte("v1")))
	got, err := c.Get(ctx, testKey(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	// 覆盖旧值
	require.NoError(t, c.Put(ctx, testKey(1), []byte("v2")))
	got, err = c.Get(ctx, testKey(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
	assert.Equal(t, 1, c.Size())
}

func TestMemoryClient_Copies(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()

	value := []byte("abc")
	require.NoError(t, c.Put(ctx, testKey(1), value))
	value[0] = 'x'

	got, err := c.Get(ctx, testKey(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'y'
	again, err := c.Get(ctx, testKey(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), again)
}

func TestMemoryClient_Validation(t *testing.T) {
	c := NewMemoryClient(WithMaxValueSize(4))
	ctx := context.Background()

	assert.ErrorIs(t, c.Put(ctx, []byte("short"), []byte("v")), types.ErrInvalidKey)
	_, err := c.Get(ctx, nil)
	assert.ErrorIs(t, err, types.ErrInvalidKey)

	assert.ErrorIs(t, c.Put(ctx, testKey(1), []byte("too long")), types.ErrValueTooLarge)
	_, err = c.Get(ctx, testKey(1))
	assert.ErrorIs(t, err, types.ErrNotFound, "failed put must not store")
}

func TestMemoryClient_ContextCanceled(t *testing.T) {
	c := NewMemoryClient()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := c.Put(ctx, testKey(1), []byte("v"))
	var te *types.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "put", te.Op)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = c.Get(ctx, testKey(1))
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "get", te.Op)
}

func TestMemoryClient_TTL(t *testing.T) {
	clk := clock.NewMock()
	c := NewMemoryClient(WithClock(clk), WithTTL(time.Minute))
	ctx := context.Background()

	require.NoError(t, c.Put(ctx, testKey(1), []byte("v")))
	clk.Add(59 * time.Second)
	_, err := c.Get(ctx, testKey(1))
	require.NoError(t, err)

	clk.Add(time.Second)
	_, err = c.Get(ctx, testKey(1))
	assert.ErrorIs(t, err, types.ErrNotFound)

	// 过期记录在清理前仍计入 Size
	assert.Equal(t, 1, c.Size())
	assert.Equal(t, 1, c.CleanupExpired())
	assert.Equal(t, 0, c.Size())
}

func TestMemoryClient_Close(t *testing.T) {
	c := NewMemoryClient()
	ctx := context.Background()
	require.NoError(t, c.Put(ctx, testKey(1), []byte("v")))
	require.NoError(t, c.Close())

	assert.ErrorIs(t, c.Put(ctx, testKey(1), []byte("v")), types.ErrClientClosed)
	_, err := c.Get(ctx, testKey(1))
	assert.ErrorIs(t, err, types.ErrClientClosed)
}

func TestStartCleanup(t *testing.T) {
	clk := clock.NewMock()
	c := NewMemoryClient(WithClock(clk), WithTTL(time.Second))
	require.NoError(t, c.Put(context.Background(), testKey(1), []byte("v")))

	stop := StartCleanup(clk, time.Minute, c)
	defer stop()

	clk.Add(time.Minute)
	assert.Eventually(t, func() bool { return c.Size() == 0 }, time.Second, 5*time.Millisecond)

	stop()
	stop()
}
