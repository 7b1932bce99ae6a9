package metrics

import (
	"context"
	"time"

	"github.com/dep2p/go-diddht/pkg/interfaces"
	"github.com/dep2p/go-diddht/pkg/types"
)

// instrumentedDHT 为 DHTClient 记录请求计数、延迟和流量
type instrumentedDHT struct {
	next    interfaces.DHTClient
	metrics *Metrics
}

// InstrumentDHT 包装 DHTClient
//
// m 为 nil 时原样返回 c。
func InstrumentDHT(c interfaces.DHTClient, m *Metrics) interfaces.DHTClient {
	if m == nil || c == nil {
		return c
	}
	return &instrumentedDHT{next: c, metrics: m}
}

// Unwrap 返回被包装的客户端
func (d *instrumentedDHT) Unwrap() interfaces.DHTClient {
	return d.next
}

func (d *instrumentedDHT) Put(ctx context.Context, key, value []byte) error {
	start := time.Now()
	err := d.next.Put(ctx, key, value)
	d.metrics.ObserveDHT(OpPut, dhtResult(err), time.Since(start))
	if err == nil {
		d.metrics.LogTraffic(OpPut, 0, len(value))
	}
	return err
}

func (d *instrumentedDHT) Get(ctx context.Context, key []byte) ([]byte, error) {
	start := time.Now()
	value, err := d.next.Get(ctx, key)
	d.metrics.ObserveDHT(OpGet, dhtResult(err), time.Since(start))
	if err == nil {
		d.metrics.LogTraffic(OpGet, len(value), 0)
	}
	return value, err
}

func dhtResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case types.IsNotFound(err):
		return ResultNotFound
	default:
		return ResultError
	}
}
