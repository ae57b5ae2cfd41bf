package filter

import (
	"context"
	"strings"

	"github.com/rushteam/catalogkit/core"
)

// BlocklistStore 是屏蔽列表存储接口。
type BlocklistStore interface {
	GetBlocklist(ctx context.Context, key string) ([]string, error)
}

// BlocklistFilter 按名称（不区分大小写）过滤下架商品。
// Store 中的列表每次查询只读取一次，缓存在 QueryContext.Params 上。
type BlocklistFilter struct {
	// Names 是内存中的屏蔽名称
	Names []string

	// Store / Key 可选，从存储读取屏蔽名称
	Store BlocklistStore
	Key   string
}

// NewBlocklistFilter 创建一个屏蔽过滤器，storeAdapter 可以为 nil。
func NewBlocklistFilter(names []string, storeAdapter *StoreAdapter, key string) *BlocklistFilter {
	var store BlocklistStore
	if storeAdapter != nil {
		store = storeAdapter
	}
	return &BlocklistFilter{
		Names: names,
		Store: store,
		Key:   key,
	}
}

func (f *BlocklistFilter) Name() string {
	return "filter.blocklist"
}

func (f *BlocklistFilter) ShouldFilter(
	ctx context.Context,
	qctx *core.QueryContext,
	r *core.Record,
) (bool, error) {
	if r == nil {
		return true, nil
	}
	for _, name := range f.Names {
		if strings.EqualFold(r.Name, name) {
			return true, nil
		}
	}

	if f.Store == nil || f.Key == "" {
		return false, nil
	}
	blocked, err := f.stored(ctx, qctx)
	if err != nil {
		return false, err
	}
	_, ok := blocked[strings.ToLower(r.Name)]
	return ok, nil
}

func (f *BlocklistFilter) stored(ctx context.Context, qctx *core.QueryContext) (map[string]struct{}, error) {
	cacheKey := "blocklist:" + f.Key
	if qctx != nil {
		if cached, ok := qctx.Params[cacheKey].(map[string]struct{}); ok {
			return cached, nil
		}
	}

	names, err := f.Store.GetBlocklist(ctx, f.Key)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[strings.ToLower(n)] = struct{}{}
	}
	if qctx != nil {
		if qctx.Params == nil {
			qctx.Params = make(map[string]any)
		}
		qctx.Params[cacheKey] = set
	}
	return set, nil
}
