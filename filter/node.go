package filter

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/pipeline"
	"github.com/rushteam/catalogkit/pkg/utils"
)

// FilterNode 是组合过滤 Node，任何一个过滤器返回 true，该记录就会被过滤掉。
// 输出是新集合，输入保持不变且顺序保留。
type FilterNode struct {
	Filters []Filter
	Logger  *zap.Logger
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	qctx *core.QueryContext,
	records core.Collection,
) (core.Collection, error) {
	if len(n.Filters) == 0 || len(records) == 0 {
		return records.Clone(), nil
	}

	out := make(core.Collection, 0, len(records))
	removed := make(map[string]int, len(n.Filters))

	for _, r := range records {
		if r == nil {
			continue
		}

		filterReason := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, qctx, r)
			if err != nil {
				// 过滤器错误时记录但不中断流程
				if n.Logger != nil {
					n.Logger.Warn("filter error, record kept",
						zap.String("filter", f.Name()),
						zap.String("record", r.Name),
						zap.Error(err),
					)
				}
				continue
			}
			if ok {
				filterReason = f.Name()
				break
			}
		}

		if filterReason != "" {
			removed[filterReason]++
			continue
		}
		out = append(out, r)
	}

	// 记录是共享的，过滤原因只能记在查询级 labels 上
	if qctx != nil {
		for name, count := range removed {
			qctx.SetLabel("filtered."+name, utils.Label{Value: strconv.Itoa(count), Source: "filter"})
		}
	}
	return out, nil
}
