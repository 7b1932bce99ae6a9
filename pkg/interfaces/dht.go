package interfaces

import "context"

// ════════════════════════════════════════════════════════════════════════════
// DHTClient 接口
// ════════════════════════════════════════════════════════════════════════════

// DHTClient 外部 DHT 传输的最小契约
//
// 不涉及节点发现、路由或复制。实现需要遵守：
//   - Get 在键下没有记录时返回 types.ErrNotFound
//   - 网络故障、超时和 context 截止返回 *types.TransportError
//   - Put 失败不得改变已存储的值
//
// 实现位置：internal/dhtclient/
type DHTClient interface {
	// Put 在 key 下存储 value，覆盖旧值
	Put(ctx context.Context, key, value []byte) error

	// Get 读取 key 下的值
	Get(ctx context.Context, key []byte) ([]byte, error)
}
