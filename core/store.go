package core

import "context"

// Store 是存储的领域接口，定义在 core，由 store 包实现（依赖倒置）。
//
// 使用场景：
//   - 目录快照：把加载好的记录写入 Redis，供其它进程直接加载
//   - 缓存：查询结果缓存
type Store interface {
	// Name 返回存储后端名称（用于日志）
	Name() string

	Get(ctx context.Context, key string) ([]byte, error)

	// Set 写入单个 key-value，ttl 单位为秒
	Set(ctx context.Context, key string, value []byte, ttl ...int) error

	Delete(ctx context.Context, key string) error

	BatchGet(ctx context.Context, keys []string) (map[string][]byte, error)

	BatchSet(ctx context.Context, kvs map[string][]byte, ttl ...int) error

	Close() error
}

// HashStore 是 Store 的扩展接口，按 Hash 存取目录记录：key 为目录名，field 为行号。
type HashStore interface {
	Store

	HGet(ctx context.Context, key, field string) ([]byte, error)

	HSet(ctx context.Context, key, field string, value []byte) error

	// HGetAll 读取整个 Hash
	HGetAll(ctx context.Context, key string) (map[string][]byte, error)

	HDel(ctx context.Context, key string, fields ...string) error
}

// Store 错误定义（使用统一的 DomainError）
var (
	// ErrStoreNotFound 表示 key 不存在
	ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: key not found")

	// ErrStoreNotSupported 表示操作不支持
	ErrStoreNotSupported = NewDomainError(ModuleStore, ErrorCodeNotSupported, "store: operation not supported")
)

// IsStoreNotFound 检查错误是否为 key 不存在
func IsStoreNotFound(err error) bool {
	domainErr := GetDomainError(err)
	if domainErr != nil && domainErr.Module == ModuleStore {
		return domainErr.Code == ErrorCodeNotFound
	}
	return false
}
