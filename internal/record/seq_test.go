package record

import (
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-diddht/internal/core/storage/engine"
	"github.com/dep2p/go-diddht/internal/core/storage/engine/badger"
	"github.com/dep2p/go-diddht/internal/core/storage/kv"
)

func TestCounterSeqSource(t *testing.T) {
	s := NewCounterSeqSource()

	for want := uint64(1); want <= 3; want++ {
		got, err := s.NextSeq("a")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	// 身份之间独立
	got, err := s.NextSeq("b")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got)

	s.Observe("a", 100)
	got, err = s.NextSeq("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(101), got)

	// 更小的值不降低计数
	s.Observe("a", 5)
	got, err = s.NextSeq("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(102), got)

	s.Observe("c", ^uint64(0))
	_, err = s.NextSeq("c")
	assert.ErrorIs(t, err, ErrSeqExhausted)
}

func TestCounterSeqSource_Concurrent(t *testing.T) {
	s := NewCounterSeqSource()
	const n = 100

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = make(map[uint64]bool)
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq, err := s.NextSeq("id")
			assert.NoError(t, err)
			mu.Lock()
			seen[seq] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, n, "no sequence number reused")
}

func TestKVSeqSource(t *testing.T) {
	dir := t.TempDir()
	open := func() (engine.InternalEngine, *KVSeqSource) {
		cfg := engine.DefaultConfig(dir)
		cfg.Badger.GCInterval = 0
		eng, err := badger.New(cfg)
		require.NoError(t, err)
		return eng, NewKVSeqSource(kv.New(eng, nil))
	}

	eng, s := open()
	got, err := s.NextSeq("did:dht:x")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), got)
	s.Observe("did:dht:x", 10)
	require.NoError(t, eng.Close())

	// 重启后继续递增
	eng, s = open()
	defer eng.Close()
	got, err = s.NextSeq("did:dht:x")
	require.NoError(t, err)
	assert.Equal(t, uint64(11), got)

	n, err := kv.New(eng, SeqPrefix).Count(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClockSeqSource(t *testing.T) {
	clk := clock.NewMock()
	clk.Set(time.Unix(1_700_000_000, 0))
	s := NewClockSeqSource(clk)

	got, err := s.NextSeq("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_000), got)

	// 同一秒内顺延
	got, err = s.NextSeq("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_001), got)

	clk.Add(time.Minute)
	got, err = s.NextSeq("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_700_000_060), got)

	s.Observe("a", 1_800_000_000)
	got, err = s.NextSeq("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(1_800_000_001), got)
}
