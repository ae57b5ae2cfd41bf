package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/ext"

	"github.com/rushteam/catalogkit/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("record", cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable("query", cel.MapType(cel.StringType, cel.DynType)),
		ext.Strings(),
	)
}

// getCELEnv 获取或创建 CEL 环境
func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Expr 是编译好的记录过滤表达式，使用 CEL (Common Expression Language)。
// 编译一次，可被多个查询并发复用。
//
// 可用变量：
//   - record.name / record.category (string)
//   - record.price / record.rating (double)
//   - query.term / query.sort_key (string)
//
// 示例：
//   - `record.price <= 20.0 && record.rating >= 4.0`
//   - `record.category.lowerAscii().contains("tool")`
//   - `record.name.startsWith("W") || query.term == ""`
type Expr struct {
	src string
	prg cel.Program
}

// Compile 编译表达式；表达式必须返回 bool。
func Compile(expr string) (*Expr, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression must return bool, got %s", t)
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Expr{src: expr, prg: prg}, nil
}

// String 返回原始表达式
func (e *Expr) String() string { return e.src }

// Evaluate 对单条记录求值。qctx 可以为 nil。
func (e *Expr) Evaluate(r *core.Record, qctx *core.QueryContext) (bool, error) {
	out, _, err := e.prg.Eval(buildInput(r, qctx))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}

	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}

// buildInput 构建 CEL 表达式的输入数据
func buildInput(r *core.Record, qctx *core.QueryContext) map[string]any {
	query := map[string]any{
		"term":     "",
		"sort_key": "",
	}
	if qctx != nil {
		query["term"] = qctx.Term
		query["sort_key"] = qctx.SortKey
	}
	return map[string]any{
		"record": r.Fields(),
		"query":  query,
	}
}
