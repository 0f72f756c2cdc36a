package binning

import (
	"github.com/rushteam/scorekit/core"
)

// LabelSep 分隔变量名与分箱标签，例如 int_rate:<9.548。
const LabelSep = ":"

// Scheme 是一个连续变量的有序分箱方案。
type Scheme struct {
	// Variable 源列名
	Variable string
	// Bins 按输出顺序排列的分箱
	Bins []Bin
	// Note 记录已知的不对称（例如 delinq_2yrs 的 4-8 空洞），只用于文档和日志
	Note string
}

// ColumnName 返回某个分箱的输出列名。
func (s Scheme) ColumnName(b Bin) string {
	return s.Variable + LabelSep + b.Label()
}

// ColumnNames 按顺序返回全部输出列名。
func (s Scheme) ColumnNames() []string {
	names := make([]string, len(s.Bins))
	for i, b := range s.Bins {
		names[i] = s.ColumnName(b)
	}
	return names
}

// HasMissingBin 判断方案是否包含缺失箱。
func (s Scheme) HasMissingBin() bool {
	for _, b := range s.Bins {
		if _, ok := b.(Missing); ok {
			return true
		}
	}
	return false
}

// Validate 检查变量名、标签非空且不重复。
func (s Scheme) Validate() error {
	if s.Variable == "" {
		return core.ErrInvalidConfig(core.ModuleBinning, "scheme without variable")
	}
	if len(s.Bins) == 0 {
		return core.ErrInvalidConfig(core.ModuleBinning, "scheme %q has no bins", s.Variable)
	}
	seen := make(map[string]struct{}, len(s.Bins))
	for _, b := range s.Bins {
		label := b.Label()
		if label == "" {
			return core.ErrInvalidConfig(core.ModuleBinning, "scheme %q has a bin without label", s.Variable)
		}
		if _, dup := seen[label]; dup {
			return core.ErrInvalidConfig(core.ModuleBinning, "scheme %q has duplicate bin %q", s.Variable, label)
		}
		seen[label] = struct{}{}
	}
	return nil
}

// resolve 把依赖列数据的分箱（如 ToMax）替换为确定边界的分箱。
func (s Scheme) resolve(col *core.Column) []Bin {
	bins := make([]Bin, len(s.Bins))
	for i, b := range s.Bins {
		if r, ok := b.(Resolver); ok {
			bins[i] = r.Resolve(col)
			continue
		}
		bins[i] = b
	}
	return bins
}
