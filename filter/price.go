package filter

import (
	"context"
	"fmt"
	"math"
	"strconv"

	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/pipeline"
	"github.com/rushteam/catalogkit/pkg/utils"
)

// Bounds 返回集合中观察到的最低价与最高价，用于填充价格区间控件。
// 空集合没有定义的边界，返回 INVALID_RANGE。
func Bounds(records core.Collection) (lo, hi float64, err error) {
	seen := false
	for _, r := range records {
		if r == nil {
			continue
		}
		if !seen {
			lo, hi, seen = r.Price, r.Price, true
			continue
		}
		lo = math.Min(lo, r.Price)
		hi = math.Max(hi, r.Price)
	}
	if !seen {
		return 0, 0, core.NewInvalidRangeError(core.ModuleFilter, "filter: cannot derive price bounds of an empty collection")
	}
	return lo, hi, nil
}

// FilterByPriceRange 保留 lo <= price <= hi 的记录（两端闭区间），返回新集合并保持顺序。
// 空输入返回空结果；lo > hi 或边界为 NaN 时返回 INVALID_RANGE。
func FilterByPriceRange(records core.Collection, lo, hi float64) (core.Collection, error) {
	if err := checkRange(lo, hi); err != nil {
		return nil, err
	}
	out := make(core.Collection, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if lo <= r.Price && r.Price <= hi {
			out = append(out, r)
		}
	}
	return out, nil
}

func checkRange(lo, hi float64) error {
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return core.NewInvalidRangeError(core.ModuleFilter, "filter: price bound is NaN")
	}
	if lo > hi {
		return core.NewInvalidRangeError(core.ModuleFilter, fmt.Sprintf("filter: price range lo %v > hi %v", lo, hi))
	}
	return nil
}

// PriceRangeFilter 以 Filter 形式提供价格区间判断，可放进 FilterNode 与其它过滤器组合。
type PriceRangeFilter struct {
	Lo, Hi float64
}

func (f *PriceRangeFilter) Name() string { return "filter.price_range" }

func (f *PriceRangeFilter) ShouldFilter(_ context.Context, _ *core.QueryContext, r *core.Record) (bool, error) {
	if err := checkRange(f.Lo, f.Hi); err != nil {
		return false, err
	}
	return r.Price < f.Lo || r.Price > f.Hi, nil
}

// PriceRangeNode 是价格过滤 Node。
// 区间来源优先级：Lo/Hi → QueryContext.PriceRange → 输入集合的 [min, max]。
// 只配置了一端时，另一端取输入集合的边界。
// 输入为空时直接返回空集合，不推导边界。
type PriceRangeNode struct {
	Lo *float64
	Hi *float64
}

func (n *PriceRangeNode) Name() string        { return "filter.price_range" }
func (n *PriceRangeNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *PriceRangeNode) Process(
	_ context.Context,
	qctx *core.QueryContext,
	records core.Collection,
) (core.Collection, error) {
	if len(records) == 0 {
		return core.Collection{}, nil
	}
	lo, hi, err := Bounds(records)
	if err != nil {
		return core.Collection{}, nil
	}

	switch {
	case n.Lo != nil || n.Hi != nil:
		if n.Lo != nil {
			lo = *n.Lo
		}
		if n.Hi != nil {
			hi = *n.Hi
		}
	case qctx != nil && qctx.PriceRange != nil:
		lo, hi = qctx.PriceRange.Lo, qctx.PriceRange.Hi
	}

	out, err := FilterByPriceRange(records, lo, hi)
	if err != nil {
		return nil, err
	}
	if qctx != nil {
		l, h := FormatPrice(lo), FormatPrice(hi)
		qctx.SetLabel("price_range", utils.Label{Value: l + "-" + h, Source: "filter"})
		qctx.SetLabel("price_lo", utils.Label{Value: l, Source: "filter"})
		qctx.SetLabel("price_hi", utils.Label{Value: h, Source: "filter"})
	}
	return out, nil
}

// FormatPrice 以不带指数的十进制形式输出价格，+Inf 输出 "+Inf"。
func FormatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
