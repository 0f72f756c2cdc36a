package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once

	// programs 缓存已编译的表达式，同一表达式只编译一次
	programs sync.Map // map[string]*Predicate
)

// initCELEnv 初始化 CEL 环境，定义变量
func initCELEnv() (*cel.Env, error) {
	return cel.NewEnv(
		cel.Variable("value", cel.DynType),
		cel.Variable("missing", cel.BoolType),
		cel.Variable("row", cel.MapType(cel.StringType, cel.DynType)),
		cel.CrossTypeNumericComparisons(true),
	)
}

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = initCELEnv()
	})
	return celEnv, celEnvErr
}

// Predicate 是编译好的布尔表达式，使用 CEL (Common Expression Language) 语法。
//
// 单值判定（分箱）可用变量：
//   - value：单元格的值（缺失时为 null）
//   - missing：单元格是否缺失
//
// 整行判定（行过滤）可用变量：
//   - row：列名到单元格的 map，日期列为 timestamp
//
// 示例：
//   - `!missing && value >= 1 && value <= 3`
//   - `value in ["IA", "MS"]`
//   - `row.term == " 36 months" && row.issue_d_date < timestamp("2018-01-01T00:00:00Z")`
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式，结果按表达式文本缓存。
func Compile(expr string) (*Predicate, error) {
	if cached, ok := programs.Load(expr); ok {
		return cached.(*Predicate), nil
	}

	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("cel env: %w", err)
	}

	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compile error: %w", issues.Err())
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}

	p := &Predicate{expr: expr, prg: prg}
	actual, _ := programs.LoadOrStore(expr, p)
	return actual.(*Predicate), nil
}

// String 返回表达式原文。
func (p *Predicate) String() string { return p.expr }

// Match 对单个单元格求值。
func (p *Predicate) Match(value any) (bool, error) {
	return p.eval(map[string]any{
		"value":   value,
		"missing": value == nil,
	})
}

// MatchRow 对整行求值。
func (p *Predicate) MatchRow(row map[string]any) (bool, error) {
	return p.eval(map[string]any{"row": row})
}

func (p *Predicate) eval(input map[string]any) (bool, error) {
	out, _, err := p.prg.Eval(input)
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}
