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

// 评分阈值的取值范围（与展示层的滑块一致）
const (
	MinRatingLowest  = 0.0
	MinRatingHighest = 5.0
)

// FilterByMinRating 保留 rating >= threshold 的记录，返回新集合并保持顺序。
func FilterByMinRating(records core.Collection, threshold float64) core.Collection {
	out := make(core.Collection, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.Rating >= threshold {
			out = append(out, r)
		}
	}
	return out
}

// CheckThreshold 校验评分阈值位于 [0, 5]。
func CheckThreshold(threshold float64) error {
	if math.IsNaN(threshold) || threshold < MinRatingLowest || threshold > MinRatingHighest {
		return core.NewInvalidRangeError(core.ModuleFilter, fmt.Sprintf("filter: rating threshold %v outside [%v, %v]", threshold, MinRatingLowest, MinRatingHighest))
	}
	return nil
}

// MinRatingFilter 以 Filter 形式提供最低评分判断。
type MinRatingFilter struct {
	Threshold float64
}

func (f *MinRatingFilter) Name() string { return "filter.min_rating" }

func (f *MinRatingFilter) ShouldFilter(_ context.Context, _ *core.QueryContext, r *core.Record) (bool, error) {
	return r.Rating < f.Threshold, nil
}

// MinRatingNode 是最低评分过滤 Node。
// 阈值来源优先级：Threshold → QueryContext.MinRating → 0。
type MinRatingNode struct {
	Threshold *float64
}

func (n *MinRatingNode) Name() string        { return "filter.min_rating" }
func (n *MinRatingNode) Kind() pipeline.Kind { return pipeline.KindFilter }

func (n *MinRatingNode) Process(
	_ context.Context,
	qctx *core.QueryContext,
	records core.Collection,
) (core.Collection, error) {
	threshold := MinRatingLowest
	switch {
	case n.Threshold != nil:
		threshold = *n.Threshold
	case qctx != nil && qctx.MinRating != nil:
		threshold = *qctx.MinRating
	}
	if err := CheckThreshold(threshold); err != nil {
		return nil, err
	}

	if qctx != nil {
		qctx.SetLabel("min_rating", utils.Label{Value: strconv.FormatFloat(threshold, 'f', -1, 64), Source: "filter"})
	}
	return FilterByMinRating(records, threshold), nil
}
