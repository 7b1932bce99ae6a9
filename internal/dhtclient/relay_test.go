package dhtclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-diddht/pkg/types"
)

// fakeRelay 内存网关
type fakeRelay struct {
	mu     sync.Mutex
	values map[string][]byte
}

func (f *fakeRelay) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/")
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.values[key] = body
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		v, ok := f.values[key]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(v)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func testRelayConfig(url string) RelayConfig {
	cfg := DefaultRelayConfig(url)
	cfg.RetryWaitMin = time.Millisecond
	cfg.RetryWaitMax = 5 * time.Millisecond
	cfg.RateLimit = 0
	return cfg
}

func TestNewRelayClient_InvalidURL(t *testing.T) {
	for _, u := range []string{"", "ftp://host", "http://", "::bad"} {
		_, err := NewRelayClient(DefaultRelayConfig(u))
		assert.Error(t, err, u)
	}
}

func TestRelayClient_PutGet(t *testing.T) {
	srv := httptest.NewServer(&fakeRelay{values: map[string][]byte{}})
	defer srv.Close()

	c, err := NewRelayClient(testRelayConfig(srv.URL + "/"))
	require.NoError(t, err)
	defer c.Close()
	ctx := context.Background()

	_, err = c.Get(ctx, testKey(1))
	assert.ErrorIs(t, err, types.ErrNotFound)

	require.NoError(t, c.Put(ctx, testKey(1), []byte{0x00, 0x01, 0xff}))
	got, err := c.Get(ctx, testKey(1))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x01, 0xff}, got)

	assert.ErrorIs(t, c.Put(ctx, []byte("bad"), nil), types.ErrInvalidKey)
}

func TestRelayClient_Path(t *testing.T) {
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c, err := NewRelayClient(testRelayConfig(srv.URL + "/api/v1"))
	require.NoError(t, err)
	require.NoError(t, c.Put(context.Background(), testKey(0xab), []byte("v")))
	assert.Equal(t, "/api/v1/"+types.KeyHex(testKey(0xab)), path.Load())
}

func TestRelayClient_RetryOn5xx(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c, err := NewRelayClient(testRelayConfig(srv.URL))
	require.NoError(t, err)

	got, err := c.Get(context.Background(), testKey(1))
	require.NoError(t, err)
	assert.Equal(t, []byte("ok"), got)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRelayClient_RetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := testRelayConfig(srv.URL)
	cfg.RetryMax = 2
	c, err := NewRelayClient(cfg)
	require.NoError(t, err)

	err = c.Put(context.Background(), testKey(1), []byte("v"))
	var te *types.TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "put", te.Op)
	assert.True(t, types.IsRetryable(err))
	assert.True(t, IsStatus(err, http.StatusBadGateway))
	assert.Equal(t, int32(3), calls.Load())
}

func TestRelayClient_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewRelayClient(testRelayConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.Get(context.Background(), testKey(1))
	require.Error(t, err)
	assert.True(t, IsStatus(err, http.StatusBadRequest))
	assert.False(t, types.IsRetryable(err))

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "bad key", se.Body)
	assert.Equal(t, int32(1), calls.Load())
}

func TestRelayClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	cfg := testRelayConfig(srv.URL)
	cfg.Timeout = 50 * time.Millisecond
	cfg.RetryMax = 0
	c, err := NewRelayClient(cfg)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), testKey(1))
	var te *types.TransportError
	require.ErrorAs(t, err, &te)
	assert.True(t, types.IsRetryable(err))
}

func TestRelayClient_ValueTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 32)))
	}))
	defer srv.Close()

	cfg := testRelayConfig(srv.URL)
	cfg.MaxValueSize = 16
	c, err := NewRelayClient(cfg)
	require.NoError(t, err)

	_, err = c.Get(context.Background(), testKey(1))
	assert.ErrorIs(t, err, types.ErrValueTooLarge)
	assert.ErrorIs(t, c.Put(context.Background(), testKey(1), make([]byte, 17)), types.ErrValueTooLarge)
}

func TestRelayClient_RateLimitCanceled(t *testing.T) {
	srv := httptest.NewServer(&fakeRelay{values: map[string][]byte{}})
	defer srv.Close()

	cfg := testRelayConfig(srv.URL)
	cfg.RateLimit = 0.001
	cfg.RateBurst = 1
	cfg.Timeout = 50 * time.Millisecond
	c, err := NewRelayClient(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, c.Put(ctx, testKey(1), []byte("v")))

	// 令牌耗尽，等待超过超时
	err = c.Put(ctx, testKey(1), []byte("v"))
	var te *types.TransportError
	require.ErrorAs(t, err, &te)
}
