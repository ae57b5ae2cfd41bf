// Package search 实现按子串搜索目录记录：先匹配名称，无结果时在原集合上回退匹配类别。
package search

import (
	"strings"

	"github.com/rushteam/catalogkit/core"
)

// Field 是可搜索的字段，闭合枚举。
type Field string

const (
	FieldName     Field = "name"
	FieldCategory Field = "category"
)

// ByName 返回名称（小写后）包含 term（小写后）的所有记录，保持源集合中的相对顺序。
func ByName(records core.Collection, term string) core.Collection {
	return byField(records, term, func(r *core.Record) string { return r.Name })
}

// ByCategory 返回类别（小写后）包含 term（小写后）的所有记录，保持源集合中的相对顺序。
func ByCategory(records core.Collection, term string) core.Collection {
	return byField(records, term, func(r *core.Record) string { return r.Category })
}

// WithFallback 是两次尝试的搜索策略：先按名称；名称无匹配时，
// 在原始集合（而不是名称搜索的空结果）上按类别重试。返回产生结果的字段。
func WithFallback(records core.Collection, term string) (core.Collection, Field) {
	if found := ByName(records, term); len(found) > 0 {
		return found, FieldName
	}
	return ByCategory(records, term), FieldCategory
}

func byField(records core.Collection, term string, field func(*core.Record) string) core.Collection {
	term = strings.ToLower(term)
	out := make(core.Collection, 0)
	for _, r := range records {
		if r == nil {
			continue
		}
		if strings.Contains(strings.ToLower(field(r)), term) {
			out = append(out, r)
		}
	}
	return out
}
