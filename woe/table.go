package woe

import (
	"fmt"
	"math"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/conv"
)

// Policy 决定退化类别（好或坏样本数为 0）的 WoE 取值方式。
type Policy string

const (
	// PolicyAdditive 对退化类别的好、坏计数各加 Alpha 后再计算（默认）
	PolicyAdditive Policy = "additive"
	// PolicyNeutral 把退化类别的 WoE 置为 0
	PolicyNeutral Policy = "neutral"
)

// 目标列取值：好 = 1，坏 = 0。
const (
	Good = 1.0
	Bad  = 0.0
)

// Category 是单个类别的拟合结果。
type Category struct {
	Value      string  `json:"value"`
	Good       int     `json:"good"`
	Bad        int     `json:"bad"`
	WoE        float64 `json:"woe"`
	Degenerate bool    `json:"degenerate,omitempty"`
}

// Table 是一个 (variable, target) 的 WoE 查找表。拟合后只读，可在多个 goroutine 间共享。
type Table struct {
	Variable   string     `json:"variable"`
	Target     string     `json:"target"`
	Categories []Category `json:"categories"`
	TotalGood  int        `json:"total_good"`
	TotalBad   int        `json:"total_bad"`
	// IV 是信息值 sum((good% - bad%) * woe)
	IV     float64 `json:"iv"`
	Policy Policy  `json:"policy"`
	Alpha  float64 `json:"alpha"`
	// Unseen 是拟合时未出现的类别以及缺失值的 WoE
	Unseen float64 `json:"unseen"`

	index map[string]int
}

// FitOptions 是单表拟合参数。
type FitOptions struct {
	Policy Policy
	Alpha  float64
	Unseen float64
}

// FitTable 在 ds 上拟合 variable 相对 target 的 WoE 表。
//
// 目标或类别缺失的行不参与拟合；目标取值只能是 1（好）或 0（坏）。
// 拟合集中好或坏样本总数为 0 时所有 WoE 均为 0（见 Table.Uninformative）。
func FitTable(ds *core.Dataset, variable, target string, opts FitOptions) (*Table, error) {
	if opts.Policy == "" {
		opts.Policy = PolicyAdditive
	}
	if opts.Policy != PolicyAdditive && opts.Policy != PolicyNeutral {
		return nil, core.ErrInvalidConfig(core.ModuleWoE, "unknown smoothing policy %q", opts.Policy)
	}
	if opts.Policy == PolicyAdditive && !(opts.Alpha > 0) {
		return nil, core.ErrInvalidConfig(core.ModuleWoE, "additive smoothing needs alpha > 0, got %v", opts.Alpha)
	}

	varCol, err := ds.Column(variable)
	if err != nil {
		return nil, err
	}
	targetCol, err := ds.Column(target)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]*Category)
	var keys []string
	t := &Table{
		Variable: variable,
		Target:   target,
		Policy:   opts.Policy,
		Alpha:    opts.Alpha,
		Unseen:   opts.Unseen,
	}
	for row := 0; row < ds.Len(); row++ {
		y, ok := conv.ToFloat64(targetCol.Value(row))
		if !ok {
			continue
		}
		if y != Good && y != Bad {
			return nil, core.ErrInvalidInput(core.ModuleWoE, "target %q row %d: %v is not 0/1", target, row, y)
		}
		cat, ok := conv.FormatCategory(varCol.Value(row))
		if !ok {
			continue
		}
		c, seen := counts[cat]
		if !seen {
			c = &Category{Value: cat}
			counts[cat] = c
			keys = append(keys, cat)
		}
		if y == Good {
			c.Good++
			t.TotalGood++
		} else {
			c.Bad++
			t.TotalBad++
		}
	}

	conv.SortCategories(keys)
	t.Categories = make([]Category, len(keys))
	for i, k := range keys {
		c := *counts[k]
		c.Degenerate = c.Good == 0 || c.Bad == 0
		c.WoE = t.value(c)
		t.Categories[i] = c
		if t.Uninformative() {
			continue
		}
		t.IV += (float64(c.Good)/float64(t.TotalGood) - float64(c.Bad)/float64(t.TotalBad)) * c.WoE
	}
	t.buildIndex()
	return t, nil
}

func (t *Table) value(c Category) float64 {
	if t.Uninformative() {
		return 0
	}
	good, bad := float64(c.Good), float64(c.Bad)
	if c.Degenerate {
		if t.Policy == PolicyNeutral {
			return 0
		}
		good += t.Alpha
		bad += t.Alpha
	}
	return math.Log((good / float64(t.TotalGood)) / (bad / float64(t.TotalBad)))
}

// Uninformative 表示拟合集只有一种结果，WoE 无法定义，全部取 0。
func (t *Table) Uninformative() bool {
	return t.TotalGood == 0 || t.TotalBad == 0
}

// FittedWith 判断表是否按 opts 拟合。α 只对 additive 策略有意义。
func (t *Table) FittedWith(opts FitOptions) bool {
	if t.Policy != opts.Policy || t.Unseen != opts.Unseen {
		return false
	}
	return t.Policy != PolicyAdditive || t.Alpha == opts.Alpha
}

// Degenerate 返回好或坏样本数为 0 的类别。
func (t *Table) Degenerate() []string {
	var out []string
	for _, c := range t.Categories {
		if c.Degenerate {
			out = append(out, c.Value)
		}
	}
	return out
}

func (t *Table) buildIndex() {
	t.index = make(map[string]int, len(t.Categories))
	for i, c := range t.Categories {
		t.index[c.Value] = i
	}
}

// Lookup 返回单元格对应的 WoE；缺失值或未见过的类别返回 (Unseen, false)。
func (t *Table) Lookup(v any) (float64, bool) {
	cat, ok := conv.FormatCategory(v)
	if !ok {
		return t.Unseen, false
	}
	if t.index != nil {
		if i, ok := t.index[cat]; ok {
			return t.Categories[i].WoE, true
		}
		return t.Unseen, false
	}
	for _, c := range t.Categories {
		if c.Value == cat {
			return c.WoE, true
		}
	}
	return t.Unseen, false
}

// Apply 把 WoE 列 name 追加到 ds（源列保留），返回新数据集与未命中的行数。
func (t *Table) Apply(ds *core.Dataset, name string) (*core.Dataset, int, error) {
	col, err := ds.Column(t.Variable)
	if err != nil {
		return nil, 0, err
	}
	values := make([]float64, ds.Len())
	unseen := 0
	for row := range values {
		w, ok := t.Lookup(col.Value(row))
		if !ok {
			unseen++
		}
		values[row] = w
	}
	out, err := ds.With(core.NewFloatColumn(name, core.TypeContinuous, values))
	if err != nil {
		return nil, 0, fmt.Errorf("woe %s: %w", t.Variable, err)
	}
	return out, unseen, nil
}
