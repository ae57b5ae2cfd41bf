package filter

import (
	"context"
	"encoding/json"

	"github.com/rushteam/catalogkit/core"
)

// StoreAdapter 将 core.Store 适配为过滤器所需的存储接口。
// 屏蔽列表以 JSON 字符串数组保存在 key 下，例如 ["Widget","Gizmo"]。
type StoreAdapter struct {
	store core.Store
}

// NewStoreAdapter 创建一个 core.Store 适配器。
func NewStoreAdapter(s core.Store) *StoreAdapter {
	return &StoreAdapter{store: s}
}

// GetBlocklist 从 Store 读取屏蔽列表；key 不存在时返回空列表。
func (a *StoreAdapter) GetBlocklist(ctx context.Context, key string) ([]string, error) {
	data, err := a.store.Get(ctx, key)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// SetBlocklist 覆盖 key 下的屏蔽列表。
func (a *StoreAdapter) SetBlocklist(ctx context.Context, key string, names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return a.store.Set(ctx, key, data)
}
