package filter

import (
	"context"

	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/pkg/dsl"
)

// ExprFilter 使用 CEL 表达式筛选记录：表达式为 true 的记录保留，false 的过滤掉。
//
// 示例：
//
//	f, _ := filter.NewExprFilter(`record.category == "Tools" && record.rating >= 4.0`)
//	node := &filter.FilterNode{Filters: []filter.Filter{f}}
type ExprFilter struct {
	expr *dsl.Expr
}

// NewExprFilter 编译表达式；编译失败立即返回错误，而不是在查询时逐条失败。
func NewExprFilter(expr string) (*ExprFilter, error) {
	e, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{expr: e}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

func (f *ExprFilter) ShouldFilter(_ context.Context, qctx *core.QueryContext, r *core.Record) (bool, error) {
	keep, err := f.expr.Evaluate(r, qctx)
	if err != nil {
		return false, err
	}
	return !keep, nil
}
