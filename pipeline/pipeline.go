package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/catalogkit/core"
)

// Pipeline 把查询拆成可组合的 Node 链：Search → Rank → Filter → Filter。
// 各 Node 严格顺序执行，每一步都依赖上一步的输出。
type Pipeline struct {
	Nodes []Node
	Hooks []Hook
}

func (p *Pipeline) Run(
	ctx context.Context,
	qctx *core.QueryContext,
	records core.Collection,
) (core.Collection, error) {
	if qctx == nil {
		qctx = &core.QueryContext{}
	}
	cur := records
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, qctx, cur)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", node.Name(), err)
		}
		for _, h := range p.Hooks {
			h.AfterNode(ctx, node, next)
		}
		cur = next
	}
	return cur, nil
}

// WithHooks 返回共享同一组 Node、但带有额外 Hook 的 Pipeline 副本。
func (p *Pipeline) WithHooks(hooks ...Hook) *Pipeline {
	all := make([]Hook, 0, len(p.Hooks)+len(hooks))
	all = append(all, p.Hooks...)
	all = append(all, hooks...)
	return &Pipeline{Nodes: p.Nodes, Hooks: all}
}
