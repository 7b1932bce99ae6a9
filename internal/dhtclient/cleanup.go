package dhtclient

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Expirer 可清理过期记录的客户端
type Expirer interface {
	CleanupExpired() int
}

// StartCleanup 按 interval 周期调用 CleanupExpired，返回停止函数
//
// 停止函数等待后台 goroutine 退出，可多次调用。
func StartCleanup(clk clock.Clock, interval time.Duration, target Expirer) (stop func()) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := clk.Ticker(interval)
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if n := target.CleanupExpired(); n > 0 {
					log.Debug("清理过期记录", "count", n)
				}
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}
