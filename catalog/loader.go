package catalog

import (
	"context"
	"fmt"

	"github.com/rushteam/catalogkit/core"
)

// Loader 是目录数据源。实现负责拒绝或跳过格式错误的行；查询核心不再重复校验。
type Loader interface {
	Load(ctx context.Context) (core.Collection, error)
}

// LoaderFunc 让普通函数实现 Loader。
type LoaderFunc func(ctx context.Context) (core.Collection, error)

func (f LoaderFunc) Load(ctx context.Context) (core.Collection, error) { return f(ctx) }

// Load 通过 loader 读取记录并构造 Catalog。
func Load(ctx context.Context, loader Loader) (*Catalog, error) {
	records, err := loader.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog: load: %w", err)
	}
	return New(records), nil
}

// RowError 描述某一行数据的问题，Line 从 1 开始（含表头）。
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }
