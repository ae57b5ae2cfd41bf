package filter

import (
	"context"
	"fmt"

	"github.com/SierraSoftworks/connor"

	"github.com/rushteam/catalogkit/core"
)

// MatchFilter 用 Mongo 风格的条件文档筛选记录，匹配的保留。
//
// 示例：
//
//	{"category": {"$eq": "Tools"}, "price": {"$lt": 20}}
//	{"$or": [{"rating": {"$gt": 4.5}}, {"category": {"$in": ["Tools", "Garden"]}}]}
type MatchFilter struct {
	Conditions map[string]any
}

func (f *MatchFilter) Name() string { return "filter.match" }

func (f *MatchFilter) ShouldFilter(_ context.Context, _ *core.QueryContext, r *core.Record) (bool, error) {
	if len(f.Conditions) == 0 {
		return false, nil
	}
	match, err := connor.Match(f.Conditions, r.Fields())
	if err != nil {
		return false, fmt.Errorf("match: %w", err)
	}
	return !match, nil
}
