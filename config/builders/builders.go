// Package builders 在 init 中把内置 Node 注册到 config 注册表。
//
// 配置示例：
//
//	pipeline:
//	  name: tools-only
//	  nodes:
//	    - type: search.fallback
//	    - type: rank.heap
//	      config: {key: rating}
//	    - type: filter.price_range
//	      config: {lo: 5, hi: 50}
//	    - type: filter
//	      config:
//	        filters:
//	          - {type: expr, expr: 'record.category == "Tools"'}
//	          - {type: match, conditions: {price: {$lt: 30}}}
package builders

import (
	"fmt"

	"github.com/rushteam/catalogkit/config"
	"github.com/rushteam/catalogkit/filter"
	"github.com/rushteam/catalogkit/pipeline"
	"github.com/rushteam/catalogkit/pkg/conv"
	"github.com/rushteam/catalogkit/rank"
	"github.com/rushteam/catalogkit/search"
)

func init() {
	config.Register("search.fallback", BuildFallbackNode)
	config.Register("rank.heap", BuildHeapSortNode)
	config.Register("filter.price_range", BuildPriceRangeNode)
	config.Register("filter.min_rating", BuildMinRatingNode)
	config.Register("filter", BuildFilterNode)
}

func BuildFallbackNode(cfg map[string]any) (pipeline.Node, error) {
	return &search.FallbackNode{Term: conv.ConfigGet(cfg, "term", "")}, nil
}

func BuildHeapSortNode(cfg map[string]any) (pipeline.Node, error) {
	key, err := rank.ParseKey(conv.ConfigGet(cfg, "key", "price"))
	if err != nil {
		return nil, err
	}
	return &rank.HeapSortNode{Key: key}, nil
}

// BuildPriceRangeNode 的 lo / hi 均可省略，省略的一端取搜索结果的边界。
func BuildPriceRangeNode(cfg map[string]any) (pipeline.Node, error) {
	n := &filter.PriceRangeNode{}
	if lo, ok := conv.ConfigLookupFloat64(cfg, "lo"); ok {
		n.Lo = &lo
	}
	if hi, ok := conv.ConfigLookupFloat64(cfg, "hi"); ok {
		n.Hi = &hi
	}
	if n.Lo != nil && n.Hi != nil && *n.Lo > *n.Hi {
		return nil, fmt.Errorf("lo %v greater than hi %v", *n.Lo, *n.Hi)
	}
	return n, nil
}

func BuildMinRatingNode(cfg map[string]any) (pipeline.Node, error) {
	n := &filter.MinRatingNode{}
	if th, ok := conv.ConfigLookupFloat64(cfg, "threshold"); ok {
		if err := filter.CheckThreshold(th); err != nil {
			return nil, err
		}
		n.Threshold = &th
	}
	return n, nil
}

// BuildFilterNode 构建组合过滤 Node，filters 支持 expr / match / blocklist / price_range / min_rating。
func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]any)
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for i, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("filter %d: invalid config", i)
		}
		f, err := buildFilter(filterMap)
		if err != nil {
			return nil, fmt.Errorf("filter %d: %w", i, err)
		}
		filters = append(filters, f)
	}
	return &filter.FilterNode{Filters: filters}, nil
}

func buildFilter(m map[string]any) (filter.Filter, error) {
	switch filterType := conv.ConfigGet(m, "type", ""); filterType {
	case "expr":
		expr := conv.ConfigGet(m, "expr", "")
		if expr == "" {
			return nil, fmt.Errorf("expr not found")
		}
		return filter.NewExprFilter(expr)

	case "match":
		conditions, ok := conv.ConfigGetMap(m, "conditions")
		if !ok {
			return nil, fmt.Errorf("conditions not found or invalid")
		}
		return &filter.MatchFilter{Conditions: conditions}, nil

	case "price_range":
		lo, okLo := conv.ConfigLookupFloat64(m, "lo")
		hi, okHi := conv.ConfigLookupFloat64(m, "hi")
		if !okLo || !okHi {
			return nil, fmt.Errorf("price_range needs lo and hi")
		}
		if lo > hi {
			return nil, fmt.Errorf("lo %v greater than hi %v", lo, hi)
		}
		return &filter.PriceRangeFilter{Lo: lo, Hi: hi}, nil

	case "blocklist":
		names := conv.ConfigGetStrings(m, "names")
		if len(names) == 0 {
			return nil, fmt.Errorf("blocklist needs names")
		}
		return filter.NewBlocklistFilter(names, nil, ""), nil

	case "min_rating":
		th := conv.ConfigGetFloat64(m, "threshold", filter.MinRatingLowest)
		if err := filter.CheckThreshold(th); err != nil {
			return nil, err
		}
		return &filter.MinRatingFilter{Threshold: th}, nil

	default:
		return nil, fmt.Errorf("unknown filter type: %q", filterType)
	}
}
