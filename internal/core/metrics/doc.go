// Package metrics 提供发布与解析路径的监控指标
//
// 两部分组成：
//   - Prometheus 指标：DHT 请求计数与延迟、发布/解析结果、缓存命中、报文大小
//   - TrafficCounter：按 DHT 操作统计的流量总量与 60 秒滑动速率
//
// # 快速开始
//
//	m, err := metrics.New(metrics.DefaultConfig(), prometheus.NewRegistry())
//	if err != nil {
//	    return err
//	}
//	client = metrics.InstrumentDHT(client, m)
//
//	stats := m.Traffic().Totals()
//	fmt.Printf("Out: %d B, RateOut: %.2f B/s\n", stats.TotalOut, stats.RateOut)
//
// 关闭指标时使用 metrics.Nop()，所有记录方法为空操作。
package metrics
