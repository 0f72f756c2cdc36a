package binning

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/conv"
	"github.com/rushteam/scorekit/pkg/dsl"
)

// Bin 是一个具名分箱：对原始单元格给出是否属于该箱的判定。
//
// 同一变量的各个 Bin 应当互斥且覆盖所有可能取值（含缺失），
// 但这一点不强制检查；覆盖空洞与重叠会体现在 BinReport 中。
type Bin interface {
	// Label 返回分箱标签，输出列名为 variable:label
	Label() string
	// Contains 判断单元格是否落入该箱。nil/NaN 表示缺失
	Contains(v any) (bool, error)
}

// Resolver 由需要根据整列数据确定边界的 Bin 实现（例如上界取列最大值）。
type Resolver interface {
	Resolve(col *core.Column) Bin
}

// Interval 是数值区间分箱，Lower/Upper 为 nil 表示该侧无界。缺失值永不命中。
type Interval struct {
	Name        string
	Lower       *float64
	Upper       *float64
	LowerClosed bool
	UpperClosed bool
}

func (b Interval) Label() string { return b.Name }

func (b Interval) Contains(v any) (bool, error) {
	x, ok := conv.ToFloat64(v)
	if !ok {
		return false, nil
	}
	if b.Lower != nil {
		if b.LowerClosed && x < *b.Lower {
			return false, nil
		}
		if !b.LowerClosed && x <= *b.Lower {
			return false, nil
		}
	}
	if b.Upper != nil {
		if b.UpperClosed && x > *b.Upper {
			return false, nil
		}
		if !b.UpperClosed && x >= *b.Upper {
			return false, nil
		}
	}
	return true, nil
}

func (b Interval) String() string {
	left, right := "(", ")"
	if b.LowerClosed {
		left = "["
	}
	if b.UpperClosed {
		right = "]"
	}
	lo, hi := "-inf", "+inf"
	if b.Lower != nil {
		lo = strconv.FormatFloat(*b.Lower, 'g', -1, 64)
	}
	if b.Upper != nil {
		hi = strconv.FormatFloat(*b.Upper, 'g', -1, 64)
	}
	return fmt.Sprintf("%s%s, %s%s", left, lo, hi, right)
}

func bound(v float64) *float64 { return &v }

// AtMost 返回 (-inf, hi]。
func AtMost(label string, hi float64) Interval {
	return Interval{Name: label, Upper: bound(hi), UpperClosed: true}
}

// Above 返回 (lo, +inf)。
func Above(label string, lo float64) Interval {
	return Interval{Name: label, Lower: bound(lo)}
}

// AtLeast 返回 [lo, +inf)。
func AtLeast(label string, lo float64) Interval {
	return Interval{Name: label, Lower: bound(lo), LowerClosed: true}
}

// LeftOpen 返回 (lo, hi]，连续变量的常规中间箱。
func LeftOpen(label string, lo, hi float64) Interval {
	return Interval{Name: label, Lower: bound(lo), Upper: bound(hi), UpperClosed: true}
}

// Closed 返回 [lo, hi]，计数类变量的常规中间箱。
func Closed(label string, lo, hi float64) Interval {
	return Interval{Name: label, Lower: bound(lo), Upper: bound(hi), LowerClosed: true, UpperClosed: true}
}

// Equal 返回 [v, v]。
func Equal(label string, v float64) Interval {
	return Closed(label, v, v)
}

// IntRange 命中整数值 x 且 Start <= x < Stop（与 Python 的 isin(range(start, stop)) 一致）。
// ToMax 为 true 时 Stop 由列的实际最大值决定（包含最大值本身）。
type IntRange struct {
	Name  string
	Start int
	Stop  int
	ToMax bool
}

func (b IntRange) Label() string { return b.Name }

func (b IntRange) Contains(v any) (bool, error) {
	x, ok := conv.ToFloat64(v)
	if !ok || x != math.Trunc(x) {
		return false, nil
	}
	return x >= float64(b.Start) && x < float64(b.Stop), nil
}

// Resolve 在 ToMax 时用列最大值重算上界。
func (b IntRange) Resolve(col *core.Column) Bin {
	if !b.ToMax {
		return b
	}
	resolved := b
	resolved.ToMax = false
	values := col.Floats()
	if len(values) == 0 {
		resolved.Stop = b.Start
		return resolved
	}
	resolved.Stop = int(math.Floor(floats.Max(values))) + 1
	return resolved
}

// ValueSet 命中格式化后属于 Values 的单元格，用于离散变量。
type ValueSet struct {
	Name   string
	Values []string
}

func (b ValueSet) Label() string { return b.Name }

func (b ValueSet) Contains(v any) (bool, error) {
	s, ok := conv.FormatCategory(v)
	if !ok {
		return false, nil
	}
	for _, want := range b.Values {
		if s == want {
			return true, nil
		}
	}
	return false, nil
}

// Missing 只命中缺失值。
type Missing struct {
	Name string
}

// MissingLabel 是缺失箱的默认标签。
const MissingLabel = "Missing"

func (b Missing) Label() string {
	if b.Name == "" {
		return MissingLabel
	}
	return b.Name
}

func (b Missing) Contains(v any) (bool, error) {
	return isMissing(v), nil
}

func isMissing(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case float64:
		return math.IsNaN(val)
	}
	return false
}

// Expr 使用 CEL 表达式判定，变量 value / missing 见 dsl.Predicate。
type Expr struct {
	Name      string
	Predicate *dsl.Predicate
}

// NewExpr 编译表达式并返回 Expr 分箱。
func NewExpr(label, expr string) (Expr, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return Expr{}, core.ErrInvalidConfig(core.ModuleBinning, "bin %q: %v", label, err)
	}
	return Expr{Name: label, Predicate: p}, nil
}

func (b Expr) Label() string { return b.Name }

func (b Expr) Contains(v any) (bool, error) {
	if isMissing(v) {
		v = nil
	}
	return b.Predicate.Match(v)
}

var (
	_ Bin      = Interval{}
	_ Bin      = IntRange{}
	_ Resolver = IntRange{}
	_ Bin      = ValueSet{}
	_ Bin      = Missing{}
	_ Bin      = Expr{}
)
