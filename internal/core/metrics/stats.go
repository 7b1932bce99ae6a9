package metrics

// Stats 流量统计快照
//
// TotalIn/TotalOut 为累计读取/写入字节数，RateIn/RateOut 为最近 60 秒的平均速率。
type Stats struct {
	TotalIn  int64   // Get 读取的字节
	TotalOut int64   // Put 写入的字节
	RateIn   float64 // 读取速率（字节/秒）
	RateOut  float64 // 写入速率（字节/秒）
}
