package metrics

import (
	"sync"

	"github.com/benbjohnson/clock"
)

// TrafficCounter 按 DHT 操作统计流量
type TrafficCounter struct {
	clock clock.Clock

	in  *RateMeter
	out *RateMeter

	mu   sync.RWMutex
	byOp map[string]*opMeters
}

type opMeters struct {
	in, out *RateMeter
}

// NewTrafficCounter 创建流量计数器
func NewTrafficCounter(clk clock.Clock) *TrafficCounter {
	if clk == nil {
		clk = clock.New()
	}
	return &TrafficCounter{
		clock: clk,
		in:    NewRateMeter(clk),
		out:   NewRateMeter(clk),
		byOp:  make(map[string]*opMeters),
	}
}

// LogIn 记录读取字节
func (t *TrafficCounter) LogIn(op string, n int64) {
	t.in.Add(n)
	t.meters(op).in.Add(n)
}

// LogOut 记录写入字节
func (t *TrafficCounter) LogOut(op string, n int64) {
	t.out.Add(n)
	t.meters(op).out.Add(n)
}

func (t *TrafficCounter) meters(op string) *opMeters {
	t.mu.RLock()
	m := t.byOp[op]
	t.mu.RUnlock()
	if m != nil {
		return m
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if m = t.byOp[op]; m == nil {
		m = &opMeters{in: NewRateMeter(t.clock), out: NewRateMeter(t.clock)}
		t.byOp[op] = m
	}
	return m
}

// Totals 返回总流量
func (t *TrafficCounter) Totals() Stats {
	return Stats{
		TotalIn:  t.in.Total(),
		TotalOut: t.out.Total(),
		RateIn:   t.in.Rate(),
		RateOut:  t.out.Rate(),
	}
}

// ForOp 返回指定操作的流量
func (t *TrafficCounter) ForOp(op string) Stats {
	t.mu.RLock()
	m := t.byOp[op]
	t.mu.RUnlock()
	if m == nil {
		return Stats{}
	}
	return Stats{
		TotalIn:  m.in.Total(),
		TotalOut: m.out.Total(),
		RateIn:   m.in.Rate(),
		RateOut:  m.out.Rate(),
	}
}

// Reset 清除所有统计
func (t *TrafficCounter) Reset() {
	t.in.Reset()
	t.out.Reset()
	t.mu.Lock()
	t.byOp = make(map[string]*opMeters)
	t.mu.Unlock()
}
