// Package store 提供 core.Store / core.HashStore 的实现，接口定义在 core 包。
//
// 示例：
//
//	var s core.HashStore = store.NewMemoryStore()
//	r, err := store.NewRedisStore("localhost:6379", 0)
package store
