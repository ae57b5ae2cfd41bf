package core

// QueryConfig 提供查询驱动层的默认值。
type QueryConfig interface {
	// DefaultSortKey 返回默认排序字段（"price" 或 "rating"）
	DefaultSortKey() string

	// DefaultMinRating 返回默认最低评分
	DefaultMinRating() float64

	// DefaultBatchConcurrency 返回批量查询的默认并发数
	DefaultBatchConcurrency() int
}

// DefaultQueryConfig 是默认的查询配置实现。
type DefaultQueryConfig struct{}

func (c *DefaultQueryConfig) DefaultSortKey() string {
	return "price"
}

func (c *DefaultQueryConfig) DefaultMinRating() float64 {
	return 0
}

func (c *DefaultQueryConfig) DefaultBatchConcurrency() int {
	return 4
}
