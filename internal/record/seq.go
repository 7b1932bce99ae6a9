package record

import (
	"errors"
	"sync"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-diddht/internal/core/storage/kv"
)

// ============================================================================
//                              序列号来源
// ============================================================================

// SeqSource 为身份分配序列号
//
// 同一身份连续两次调用返回的值严格递增。
type SeqSource interface {
	NextSeq(identity string) (uint64, error)
}

// Observer 可从已存储记录中学习序列号下限的来源
type Observer interface {
	Observe(identity string, seq uint64)
}

// ErrSeqExhausted 序列号溢出
var ErrSeqExhausted = errors.New("record: sequence number exhausted")

// ============================================================================
//                              CounterSeqSource
// ============================================================================

// CounterSeqSource 进程内计数器，每个身份独立计数，从 1 开始
type CounterSeqSource struct {
	mu   sync.Mutex
	last map[string]uint64
}

var (
	_ SeqSource = (*CounterSeqSource)(nil)
	_ Observer  = (*CounterSeqSource)(nil)
)

// NewCounterSeqSource 创建计数器
func NewCounterSeqSource() *CounterSeqSource {
	return &CounterSeqSource{last: make(map[string]uint64)}
}

// NextSeq 返回下一个序列号
func (s *CounterSeqSource) NextSeq(identity string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur := s.last[identity]
	if cur == ^uint64(0) {
		return 0, ErrSeqExhausted
	}
	s.last[identity] = cur + 1
	return cur + 1, nil
}

// Observe 将计数提升到不小于 seq
func (s *CounterSeqSource) Observe(identity string, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.last[identity] {
		s.last[identity] = seq
	}
}

// ============================================================================
//                              KVSeqSource
// ============================================================================

// SeqPrefix 序列号在 kv 中的前缀
var SeqPrefix = []byte("s/")

// KVSeqSource 持久化计数器，重启后继续递增
type KVSeqSource struct {
	store *kv.Store
}

var (
	_ SeqSource = (*KVSeqSource)(nil)
	_ Observer  = (*KVSeqSource)(nil)
)

// NewKVSeqSource 创建持久化计数器
//
// store 为根 kv.Store，计数器在其下使用 SeqPrefix 子空间。
func NewKVSeqSource(store *kv.Store) *KVSeqSource {
	return &KVSeqSource{store: store.SubStore(SeqPrefix)}
}

// NextSeq 返回下一个序列号
func (s *KVSeqSource) NextSeq(identity string) (uint64, error) {
	next, err := s.store.IncrUint64([]byte(identity), 1)
	if err != nil {
		return 0, NewRecordError("seq", err, "increment counter")
	}
	return next, nil
}

// Observe 将计数提升到不小于 seq
func (s *KVSeqSource) Observe(identity string, seq uint64) {
	if _, err := s.store.MaxUint64([]byte(identity), seq); err != nil {
		log.Warn("更新序列号下限失败", "identity", identity, "error", err)
	}
}

// ============================================================================
//                              ClockSeqSource
// ============================================================================

// ClockSeqSource 以 Unix 秒作为序列号（did:dht 惯例）
//
// 同一秒内的多次调用顺延到上次的值加一，保证严格递增。
type ClockSeqSource struct {
	clock clock.Clock

	mu   sync.Mutex
	last map[string]uint64
}

var (
	_ SeqSource = (*ClockSeqSource)(nil)
	_ Observer  = (*ClockSeqSource)(nil)
)

// NewClockSeqSource 创建时钟序列号来源，clk 为 nil 时使用系统时钟
func NewClockSeqSource(clk clock.Clock) *ClockSeqSource {
	if clk == nil {
		clk = clock.New()
	}
	return &ClockSeqSource{clock: clk, last: make(map[string]uint64)}
}

// NextSeq 返回下一个序列号
func (s *ClockSeqSource) NextSeq(identity string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := uint64(s.clock.Now().Unix())
	if last := s.last[identity]; next <= last {
		if last == ^uint64(0) {
			return 0, ErrSeqExhausted
		}
		next = last + 1
	}
	s.last[identity] = next
	return next, nil
}

// Observe 将下限提升到不小于 seq
func (s *ClockSeqSource) Observe(identity string, seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq > s.last[identity] {
		s.last[identity] = seq
	}
}
