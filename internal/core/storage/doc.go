// Package storage 提供本地持久化存储服务
//
// 基于 BadgerDB，为持久化 DHT 客户端和序列号计数器提供键值存储后端，
// 各组件通过 kv.Store 的键前缀隔离数据：
//
//	前缀   | 组件                 | 说明
//	-------|----------------------|------------------
//	d/v/   | dhtclient.Persistent | 签名记录（带 TTL）
//	s/     | record.KVSeqSource   | 每个身份的序列号
//
// # 使用示例
//
// 使用 Fx 依赖注入：
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    storage.Module(),
//	)
//
// 手动创建：
//
//	eng, err := storage.NewEngine(storage.DefaultConfig().WithPath(dir))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//	dht := storage.NewKVStore(eng, []byte("d/"))
package storage
