// Package audit 记录查询事件，用于离线分析搜索词、回退率与结果数量。
package audit

import (
	"context"

	"go.uber.org/zap"
)

// Event 是一次查询的摘要（轻量级，只包含必要信息）
type Event struct {
	QueryID     string   `json:"query_id"`
	Term        string   `json:"term"`
	SortKey     string   `json:"sort_key"`
	SearchField string   `json:"search_field"`
	Fallback    bool     `json:"fallback"`
	PriceRange  string   `json:"price_range,omitempty"`
	MinRating   string   `json:"min_rating,omitempty"`
	Found       int      `json:"found"`
	Results     []string `json:"results"`
	Timestamp   int64    `json:"timestamp"` // Unix 时间戳（秒）
}

// Collector 查询事件收集器（异步非阻塞）
type Collector interface {
	Record(ctx context.Context, ev *Event) error

	// Close 优雅关闭（等待缓冲数据发送完成）
	Close() error
}

// LogCollector 把事件写入 zap 日志，适合本地调试或未配置 Kafka 时使用。
type LogCollector struct {
	Logger *zap.Logger
}

func (c *LogCollector) Record(_ context.Context, ev *Event) error {
	if c.Logger == nil || ev == nil {
		return nil
	}
	c.Logger.Info("query audit",
		zap.String("query_id", ev.QueryID),
		zap.String("term", ev.Term),
		zap.String("sort_key", ev.SortKey),
		zap.String("search_field", ev.SearchField),
		zap.Bool("fallback", ev.Fallback),
		zap.String("price_range", ev.PriceRange),
		zap.String("min_rating", ev.MinRating),
		zap.Int("found", ev.Found),
		zap.Strings("results", ev.Results),
	)
	return nil
}

func (c *LogCollector) Close() error { return nil }
