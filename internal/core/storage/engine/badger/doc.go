// Package badger 实现基于 BadgerDB 的存储引擎
//
// 支持磁盘和内存两种模式，键可带 TTL，过期键由 BadgerDB 在读取和
// 迭代时自动跳过，值日志空间由后台 GC 回收。
//
// # 使用示例
//
//	eng, err := badger.New(engine.DefaultConfig("/data/diddht"))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	err = eng.PutWithTTL(key, value, time.Hour)
//	value, err := eng.Get(key)
package badger
