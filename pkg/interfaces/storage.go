package interfaces

// Engine 存储引擎基础接口
//
// 内部使用 BadgerDB 实现，用户可以提供自定义实现替换默认后端。
// 实现必须保证所有方法的线程安全。
type Engine interface {
	// Get 获取指定键的值，键不存在时返回 ErrNotFound
	Get(key []byte) ([]byte, error)

	// Put 设置键值对，覆盖旧值
	Put(key, value []byte) error

	// Delete 删除指定键，键不存在时不返回错误
	Delete(key []byte) error

	// Has 检查键是否存在
	Has(key []byte) (bool, error)

	// Close 关闭存储引擎，多次调用是安全的
	Close() error
}
