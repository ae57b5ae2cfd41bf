package core

import "github.com/rushteam/catalogkit/pkg/utils"

// PriceRange 是用户在 [min, max] 内选择的价格子区间（两端闭区间）。
type PriceRange struct {
	Lo float64 `json:"lo" yaml:"lo"`
	Hi float64 `json:"hi" yaml:"hi"`
}

// QueryContext 承载一次查询的请求级参数，贯穿整个 Pipeline 透传。
// Node 自身配置优先；Node 未配置时读取这里的值。
type QueryContext struct {
	QueryID string

	// Term 是搜索词；为空时搜索阶段直接透传
	Term string

	// SortKey 为 "price" 或 "rating"，为空时使用 Node 配置
	SortKey string

	// PriceRange 为空时由价格过滤阶段从输入集合推导 [min, max]
	PriceRange *PriceRange

	// MinRating 为空时默认 0
	MinRating *float64

	// Labels 记录查询级的解释信息，例如 search_field=category 表示触发了类别回退。
	// 记录本身在查询之间共享，解释信息只能写在这里。
	Labels map[string]utils.Label

	// Params 是扩展参数
	Params map[string]any
}

// PutLabel 写入查询级 Label；同名 key 按默认 Merge 规则累积。
func (qctx *QueryContext) PutLabel(key string, lbl utils.Label) {
	if qctx.Labels == nil {
		qctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := qctx.Labels[key]; ok {
		qctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	qctx.Labels[key] = lbl
}

// SetLabel 覆盖写入查询级 Label。
func (qctx *QueryContext) SetLabel(key string, lbl utils.Label) {
	if qctx.Labels == nil {
		qctx.Labels = make(map[string]utils.Label)
	}
	qctx.Labels[key] = lbl
}

// GetLabel 获取查询级 Label。
func (qctx *QueryContext) GetLabel(key string) (utils.Label, bool) {
	if qctx == nil || qctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := qctx.Labels[key]
	return lbl, ok
}
