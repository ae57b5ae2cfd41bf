// Package engine 是查询驱动层：把目录、Pipeline 与展示层约定串起来。
//
// 展示层的调用方式：
//   - 搜索词为空：只展示全部记录（Result.All）
//   - 搜索词非空：搜索（带类别回退）→ 排序 → 价格区间过滤 → 最低评分过滤，
//     每一步的结果都保存在 Result.Stages 中，便于逐阶段渲染表格
package engine

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rushteam/catalogkit/audit"
	"github.com/rushteam/catalogkit/catalog"
	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/filter"
	"github.com/rushteam/catalogkit/pipeline"
	"github.com/rushteam/catalogkit/rank"
	"github.com/rushteam/catalogkit/search"
)

// Engine 持有只读目录与 Pipeline，可被多个 goroutine 并发调用。
type Engine struct {
	catalog     *catalog.Catalog
	pipeline    *pipeline.Pipeline
	logger      *zap.Logger
	defaults    core.QueryConfig
	collector   audit.Collector
	concurrency int
}

// Option 配置 Engine。
type Option func(*Engine)

// WithPipeline 替换默认 Pipeline（例如从 YAML 配置构建）。
func WithPipeline(p *pipeline.Pipeline) Option {
	return func(e *Engine) {
		if p != nil {
			e.pipeline = p
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithConcurrency 设置 RunBatch 的最大并发数，<= 0 时使用默认值。
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// WithCollector 设置查询事件收集器；每次带搜索词的查询完成后记录一条事件。
func WithCollector(c audit.Collector) Option {
	return func(e *Engine) { e.collector = c }
}

func WithQueryConfig(c core.QueryConfig) Option {
	return func(e *Engine) {
		if c != nil {
			e.defaults = c
		}
	}
}

// New 基于已加载的目录创建 Engine。
func New(cat *catalog.Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog:  cat,
		logger:   zap.NewNop(),
		defaults: &core.DefaultQueryConfig{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.pipeline == nil {
		key, err := rank.ParseKey(e.defaults.DefaultSortKey())
		if err != nil {
			key = rank.KeyPrice
		}
		e.pipeline = DefaultPipeline(e.logger, key)
	}
	if e.concurrency <= 0 {
		e.concurrency = e.defaults.DefaultBatchConcurrency()
	}
	return e
}

// DefaultPipeline 返回 Search → Rank → PriceRange → MinRating 的标准链路，key 为默认排序字段。
func DefaultPipeline(logger *zap.Logger, key rank.Key) *pipeline.Pipeline {
	return &pipeline.Pipeline{
		Nodes: []pipeline.Node{
			&search.FallbackNode{Logger: logger},
			&rank.HeapSortNode{Key: key},
			&filter.PriceRangeNode{},
			&filter.MinRatingNode{},
		},
	}
}

// Catalog 返回 Engine 使用的目录
func (e *Engine) Catalog() *catalog.Catalog { return e.catalog }

// Run 执行一次查询。
// Pipeline 的输入是目录的私有副本，排序阶段的原地置换不会影响其它并发查询。
func (e *Engine) Run(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()
	res := &Result{
		QueryID: uuid.NewString(),
		Query:   q,
		All:     e.catalog.Records(),
	}
	log := e.logger.With(zap.String("query_id", res.QueryID), zap.String("term", q.Term))

	if q.Term == "" {
		log.Debug("empty term, showing all records", zap.Int("count", len(res.All)))
		return res, nil
	}

	minRating := q.MinRating
	if minRating == nil {
		d := e.defaults.DefaultMinRating()
		minRating = &d
	}
	qctx := &core.QueryContext{
		QueryID:    res.QueryID,
		Term:       q.Term,
		SortKey:    q.SortKey, // 为空时由排序 Node 使用自身配置的 Key
		PriceRange: q.PriceRange,
		MinRating:  minRating,
	}

	p := e.pipeline.WithHooks(pipeline.HookFunc(func(_ context.Context, node pipeline.Node, out core.Collection) {
		// 后续排序会原地置换，这里保存快照
		res.Stages = append(res.Stages, Stage{
			Node:    node.Name(),
			Kind:    node.Kind(),
			Records: out.Clone(),
		})
		log.Debug("stage done", zap.String("node", node.Name()), zap.Int("count", len(out)))
	}))

	final, err := p.Run(ctx, qctx, e.catalog.Records())
	if err != nil {
		log.Warn("query failed", zap.Error(err))
		return nil, err
	}
	res.Final = final
	res.Labels = qctx.Labels

	if e.collector != nil {
		if err := e.collector.Record(ctx, res.auditEvent(start)); err != nil {
			log.Warn("audit record failed", zap.Error(err))
		}
	}

	log.Info("query completed",
		zap.String("search_field", res.SearchField()),
		zap.Int("found", len(res.Found())),
		zap.Int("count", len(final)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res, nil
}

// RunBatch 并发执行多条查询，共享同一个只读目录；结果顺序与 queries 一致。
// 任一查询失败时返回第一个错误。
func (e *Engine) RunBatch(ctx context.Context, queries []Query) ([]*Result, error) {
	results := make([]*Result, len(queries))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(e.concurrency)
	for i, q := range queries {
		eg.Go(func() error {
			res, err := e.Run(egCtx, q)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	e.logger.Info("batch completed", zap.Int("queries", len(queries)))
	return results, nil
}
