package pipeline

import (
	"context"

	"github.com/rushteam/catalogkit/core"
)

// Kind 用于标记 Node 所处阶段，方便日志与编排。
type Kind string

const (
	KindSearch Kind = "search" // 搜索阶段：按名称匹配，无结果时回退到类别
	KindRank   Kind = "rank"   // 排序阶段：原地堆排序
	KindFilter Kind = "filter" // 过滤阶段：价格区间、最低评分等
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入 Collection -> 输出 Collection”的形态。
// 过滤类 Node 返回新集合；排序类 Node 在调用期间独占输入并原地置换，返回同一个切片。
type Node interface {
	Name() string
	Kind() Kind

	Process(
		ctx context.Context,
		qctx *core.QueryContext,
		records core.Collection,
	) (core.Collection, error)
}

// Hook 在每个 Node 完成后被调用，用于观测中间结果（例如展示层逐阶段渲染表格）。
// out 可能在后续 Node 中被原地修改，需要保留时请自行 Clone。
type Hook interface {
	AfterNode(ctx context.Context, node Node, out core.Collection)
}

// HookFunc 让普通函数实现 Hook。
type HookFunc func(ctx context.Context, node Node, out core.Collection)

func (f HookFunc) AfterNode(ctx context.Context, node Node, out core.Collection) {
	f(ctx, node, out)
}
