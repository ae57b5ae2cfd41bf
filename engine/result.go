package engine

import (
	"time"

	"github.com/rushteam/catalogkit/audit"
	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/filter"
	"github.com/rushteam/catalogkit/pipeline"
	"github.com/rushteam/catalogkit/pkg/utils"
)

// Query 是展示层提交的一次查询。
type Query struct {
	Term string `json:"term" yaml:"term"`

	// SortKey 为 "price" 或 "rating"；为空时使用默认配置
	SortKey string `json:"sort_key" yaml:"sort_key"`

	// PriceRange 为空时使用搜索结果的 [min, max]
	PriceRange *core.PriceRange `json:"price_range,omitempty" yaml:"price_range,omitempty"`

	// MinRating 为空时使用默认配置
	MinRating *float64 `json:"min_rating,omitempty" yaml:"min_rating,omitempty"`
}

// Stage 是某个 Node 完成时的输出快照。
type Stage struct {
	Node    string
	Kind    pipeline.Kind
	Records core.Collection
}

// Result 保存一次查询每个阶段的集合。
type Result struct {
	QueryID string
	Query   Query

	// All 是目录全集（未过滤）
	All core.Collection

	// Stages 按执行顺序保存各 Node 的输出
	Stages []Stage

	// Final 是最后一个 Node 的输出
	Final core.Collection

	Labels map[string]utils.Label
}

// Stage 返回指定 Node 的输出快照。
func (r *Result) Stage(node string) (core.Collection, bool) {
	for _, s := range r.Stages {
		if s.Node == node {
			return s.Records, true
		}
	}
	return nil, false
}

func (r *Result) firstOfKind(kind pipeline.Kind) core.Collection {
	for _, s := range r.Stages {
		if s.Kind == kind {
			return s.Records
		}
	}
	return nil
}

// Found 是搜索阶段的结果（排序前的顺序）。
func (r *Result) Found() core.Collection { return r.firstOfKind(pipeline.KindSearch) }

// Sorted 是排序阶段的结果。
func (r *Result) Sorted() core.Collection { return r.firstOfKind(pipeline.KindRank) }

// PriceFiltered 是价格区间过滤的结果。
func (r *Result) PriceFiltered() core.Collection {
	out, _ := r.Stage("filter.price_range")
	return out
}

// SearchField 返回产生搜索结果的字段（name / category），未搜索时为空。
func (r *Result) SearchField() string {
	if lbl, ok := r.Labels["search_field"]; ok {
		return lbl.Value
	}
	return ""
}

// FellBack 报告名称无匹配、回退到了类别搜索。
func (r *Result) FellBack() bool {
	_, ok := r.Labels["search_fallback"]
	return ok
}

// Empty 报告搜索没有任何匹配。此时价格边界没有定义，展示层应跳过过滤控件。
func (r *Result) Empty() bool {
	return r.Query.Term != "" && len(r.Found()) == 0
}

// PriceBounds 返回搜索结果的最低价与最高价，供展示层填充区间控件。
// 搜索结果为空时返回 INVALID_RANGE。
func (r *Result) PriceBounds() (lo, hi float64, err error) {
	return filter.Bounds(r.Found())
}

func (r *Result) auditEvent(at time.Time) *audit.Event {
	return &audit.Event{
		QueryID:     r.QueryID,
		Term:        r.Query.Term,
		SortKey:     r.Labels["sort_key"].Value,
		SearchField: r.SearchField(),
		Fallback:    r.FellBack(),
		PriceRange:  r.Labels["price_range"].Value,
		MinRating:   r.Labels["min_rating"].Value,
		Found:       len(r.Found()),
		Results:     r.Final.Names(),
		Timestamp:   at.Unix(),
	}
}
