package rank

import (
	"context"

	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/pipeline"
	"github.com/rushteam/catalogkit/pkg/utils"
)

// HeapSortNode 是排序 Node：按价格或评分原地降序排序。
// - 查询显式指定 QueryContext.SortKey 时以它为准，否则使用 Key
// - 写入查询级 labels：sort_key
//
// Pipeline 中位于搜索之后，输入是搜索产生的新集合，因此原地置换不会影响共享的目录。
type HeapSortNode struct {
	Key Key
}

func (n *HeapSortNode) Name() string        { return "rank.heap" }
func (n *HeapSortNode) Kind() pipeline.Kind { return pipeline.KindRank }

func (n *HeapSortNode) Process(
	_ context.Context,
	qctx *core.QueryContext,
	records core.Collection,
) (core.Collection, error) {
	key := n.Key
	if qctx != nil && qctx.SortKey != "" {
		k, err := ParseKey(qctx.SortKey)
		if err != nil {
			return nil, err
		}
		key = k
	}
	if qctx != nil {
		qctx.SetLabel("sort_key", utils.Label{Value: key.String(), Source: "rank"})
	}
	return HeapSort(records, key), nil
}
