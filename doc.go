// Package catalogkit 是一个内存商品目录查询工具包。
//
// 设计要点：
// - Pipeline-first: 查询通过 Node 串联（Search → Rank → Filter → Filter）
// - Labels-first: 记录只读共享，解释信息写在查询级 labels 上
// - Node 可扩展: 自定义 Node 或通过 YAML 配置组合 CEL / 条件文档过滤器
package catalogkit

import (
	"github.com/rushteam/catalogkit/core"
	"github.com/rushteam/catalogkit/pipeline"
)

// 轻量 facade：便于用户直接 import "catalogkit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

type Record = core.Record
type Collection = core.Collection

const (
	KindSearch = pipeline.KindSearch
	KindRank   = pipeline.KindRank
	KindFilter = pipeline.KindFilter
)

// NewRecord 校验并创建一条记录。
func NewRecord(name, category string, price, rating float64) (*Record, error) {
	return core.NewRecord(name, category, price, rating)
}
