// Package prep 提供贷款数据集进入分箱前的清洗与打标：
// 日期解析、删列、工作年限数值化、成熟批次筛选、好/坏目标定义以及 CEL 行过滤。
//
// 所有函数都返回新的数据集，输入数据集保持不变。
package prep

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/dsl"
)

// DateLayout 是原始日期列（issue_d、earliest_cr_line 等）的格式，例如 "Dec-2015"。
const DateLayout = "Jan-2006"

// DateSuffix 是解析后日期列的后缀。
const DateSuffix = "_date"

// ObjectToDate 把 Mon-YYYY 字符串列解析为日期列 <col>_date（UTC 当月 1 日），源列保留。
// 缺失值保持缺失；无法解析的值返回 INVALID_INPUT。
func ObjectToDate(ds *core.Dataset, columns ...string) (*core.Dataset, error) {
	cur := ds
	for _, name := range columns {
		col, err := ds.Column(name)
		if err != nil {
			return nil, err
		}
		values := make([]any, col.Len())
		for row := range values {
			if col.IsNull(row) {
				continue
			}
			s, ok := col.String(row)
			if !ok {
				return nil, core.ErrInvalidInput(core.ModulePrep, "%s row %d: %v is not a string", name, row, col.Value(row))
			}
			t, err := time.Parse(DateLayout, strings.TrimSpace(s))
			if err != nil {
				return nil, core.ErrInvalidInput(core.ModulePrep, "%s row %d: parse %q: %v", name, row, s, err)
			}
			values[row] = t
		}
		if cur, err = cur.With(core.NewColumn(name+DateSuffix, core.TypeDate, values)); err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// DropSpec 描述要删除的列：名称包含任一子串的列，加上固定列名。
type DropSpec struct {
	Substrings []string
	Names      []string
}

// DefaultDropSpec 删除共同申请人、联合申请、困难计划、债务和解相关列以及标识列。
func DefaultDropSpec() DropSpec {
	return DropSpec{
		Substrings: []string{"hardship_", "settlement_", "sec_", "_joint"},
		Names:      []string{"id", "member_id", "url"},
	}
}

// DropColumns 按 DefaultDropSpec 删除列。
func DropColumns(ds *core.Dataset) (*core.Dataset, error) {
	return DropMatching(ds, DefaultDropSpec())
}

// DropMatching 删除匹配 spec 的列。子串匹配不到任何列不算错误；固定列名缺失返回 COLUMN_NOT_FOUND。
func DropMatching(ds *core.Dataset, spec DropSpec) (*core.Dataset, error) {
	drop := make([]string, 0)
	seen := make(map[string]struct{})
	add := func(name string) {
		if _, dup := seen[name]; dup {
			return
		}
		seen[name] = struct{}{}
		drop = append(drop, name)
	}
	for _, name := range ds.Names() {
		for _, sub := range spec.Substrings {
			if strings.Contains(name, sub) {
				add(name)
				break
			}
		}
	}
	for _, name := range spec.Names {
		if !ds.HasColumn(name) {
			return nil, core.ErrColumnNotFound(name)
		}
		add(name)
	}
	if len(drop) == 0 {
		return ds, nil
	}
	return ds.Drop(drop...)
}

// EmpLengthColumn 是工作年限列名。
const EmpLengthColumn = "emp_length"

// ParseEmpLength 解析 "< 1 year" / "1 year" / "N years" / "10+ years"。
func ParseEmpLength(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch s {
	case "< 1 year":
		return 0, nil
	case "10+ years":
		return 10, nil
	}
	head, _, _ := strings.Cut(s, " ")
	n, err := strconv.Atoi(head)
	if err != nil {
		return 0, fmt.Errorf("emp_length %q: %w", s, err)
	}
	return float64(n), nil
}

// EmpLengthToNumeric 把 emp_length 替换为数值列，缺失值保持缺失。
func EmpLengthToNumeric(ds *core.Dataset) (*core.Dataset, error) {
	col, err := ds.Column(EmpLengthColumn)
	if err != nil {
		return nil, err
	}
	values := make([]any, col.Len())
	for row := range values {
		if col.IsNull(row) {
			continue
		}
		if f, ok := col.Float(row); ok {
			values[row] = f
			continue
		}
		s, ok := col.String(row)
		if !ok {
			return nil, core.ErrInvalidInput(core.ModulePrep, "%s row %d: unexpected %T", EmpLengthColumn, row, col.Value(row))
		}
		n, err := ParseEmpLength(s)
		if err != nil {
			return nil, core.ErrInvalidInput(core.ModulePrep, "row %d: %v", row, err)
		}
		values[row] = n
	}
	return ds.Replace(core.NewColumn(EmpLengthColumn, core.TypeContinuous, values))
}

// VintageRule 保留指定期限、发放年份早于 Before 的贷款。
type VintageRule struct {
	Term   string
	Before int
}

// VintageOptions 是成熟批次筛选参数。
type VintageOptions struct {
	DateColumn string
	TermColumn string
	Rules      []VintageRule
}

// DefaultVintageOptions 只保留已经走完表现期的批次：36 期 2018 年前发放，60 期 2016 年前发放。
func DefaultVintageOptions() VintageOptions {
	return VintageOptions{
		DateColumn: "issue_d" + DateSuffix,
		TermColumn: "term",
		Rules: []VintageRule{
			{Term: " 36 months", Before: 2018},
			{Term: " 60 months", Before: 2016},
		},
	}
}

// SelectVintages 保留满足任一规则的行。期限按原值精确比较（原始数据带前导空格），日期缺失的行被丢弃。
func SelectVintages(ds *core.Dataset, opts VintageOptions) (*core.Dataset, error) {
	if len(opts.Rules) == 0 {
		return nil, core.ErrInvalidConfig(core.ModulePrep, "vintage selection without rules")
	}
	dates, err := ds.Column(opts.DateColumn)
	if err != nil {
		return nil, err
	}
	terms, err := ds.Column(opts.TermColumn)
	if err != nil {
		return nil, err
	}
	return ds.Filter(func(row int) bool {
		issued, ok := dates.Time(row)
		if !ok {
			return false
		}
		term, ok := terms.String(row)
		if !ok {
			return false
		}
		for _, r := range opts.Rules {
			if term == r.Term && issued.Year() < r.Before {
				return true
			}
		}
		return false
	}), nil
}

// BadStatuses 是判定为坏（0）的 loan_status 取值。
var BadStatuses = []string{
	"Charged Off",
	"Default",
	"Does not meet the credit policy. Status:Charged Off",
	"Late (31-120 days)",
}

// IsBad 判断贷款状态是否为坏。
func IsBad(status string) bool {
	for _, s := range BadStatuses {
		if status == s {
			return true
		}
	}
	return false
}

// GoodBadDefinition 由 statusCol 生成二元目标列 targetCol：坏 = 0，其余（含缺失）= 1。
func GoodBadDefinition(ds *core.Dataset, statusCol, targetCol string) (*core.Dataset, error) {
	col, err := ds.Column(statusCol)
	if err != nil {
		return nil, err
	}
	values := make([]float64, col.Len())
	for row := range values {
		values[row] = 1
		if s, ok := col.String(row); ok && IsBad(s) {
			values[row] = 0
		}
	}
	return ds.With(core.NewFloatColumn(targetCol, core.TypeBinary, values))
}

// Filter 保留 CEL 表达式为 true 的行，表达式通过 row 访问整行（见 dsl.Predicate）。
func Filter(ds *core.Dataset, expr string) (*core.Dataset, error) {
	p, err := dsl.Compile(expr)
	if err != nil {
		return nil, core.ErrInvalidConfig(core.ModulePrep, "filter %q: %v", expr, err)
	}
	var evalErr error
	out := ds.Filter(func(row int) bool {
		if evalErr != nil {
			return false
		}
		ok, err := p.MatchRow(ds.Row(row))
		if err != nil {
			evalErr = fmt.Errorf("filter row %d: %w", row, err)
			return false
		}
		return ok
	})
	if evalErr != nil {
		return nil, evalErr
	}
	return out, nil
}
