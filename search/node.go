package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/pipeline"
	"github.com/rushteam/catalogkit/pkg/utils"
)

// FallbackNode 是搜索 Node：名称优先，无结果回退类别。
// - 搜索词取 Term，未配置时取 QueryContext.Term
// - 搜索词为空时直接透传输入（调用方应跳过搜索）
// - 写入查询级 labels：search_field，触发回退时额外写入 search_fallback
type FallbackNode struct {
	Term   string
	Logger *zap.Logger
}

func (n *FallbackNode) Name() string        { return "search.fallback" }
func (n *FallbackNode) Kind() pipeline.Kind { return pipeline.KindSearch }

func (n *FallbackNode) Process(
	_ context.Context,
	qctx *core.QueryContext,
	records core.Collection,
) (core.Collection, error) {
	term := n.Term
	if term == "" && qctx != nil {
		term = qctx.Term
	}
	if term == "" {
		return records, nil
	}

	found, field := WithFallback(records, term)
	if qctx != nil {
		qctx.SetLabel("search_field", utils.Label{Value: string(field), Source: "search"})
		if field == FieldCategory {
			qctx.SetLabel("search_fallback", utils.Label{Value: string(FieldCategory), Source: "search"})
		}
	}
	if field == FieldCategory && n.Logger != nil {
		n.Logger.Debug("no name match, fell back to category",
			zap.String("term", term),
			zap.Int("count", len(found)),
		)
	}
	return found, nil
}
