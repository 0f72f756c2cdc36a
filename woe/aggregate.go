package woe

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/conv"
)

// Mode 决定汇总报告的排序方式。
type Mode int

const (
	// ModeDiscrete 按平均 WoE 升序（稳定排序），用于观察风险单调性
	ModeDiscrete Mode = iota
	// ModeContinuous 按类别的自然顺序（全部可解析为数字时按数值升序）
	ModeContinuous
)

func (m Mode) String() string {
	if m == ModeContinuous {
		return "continuous"
	}
	return "discrete"
}

// SummaryRow 是单个类别的汇总。
type SummaryRow struct {
	Label   string  `json:"label"`
	MeanWoE float64 `json:"mean_woe"`
	Count   int     `json:"count"`
}

// Summary 是一个变量的 WoE 汇总报告。
// CoveredRows < TotalRows 说明有行的类别或 WoE 缺失。
type Summary struct {
	Variable    string       `json:"variable"`
	Mode        Mode         `json:"mode"`
	Rows        []SummaryRow `json:"rows"`
	TotalRows   int          `json:"total_rows"`
	CoveredRows int          `json:"covered_rows"`
}

// Summarize 按 variable 的原始类别分组，计算 woeColumn 的均值与行数。只读，不修改 ds。
func Summarize(ds *core.Dataset, variable, woeColumn string, mode Mode) (*Summary, error) {
	catCol, err := ds.Column(variable)
	if err != nil {
		return nil, err
	}
	woeCol, err := ds.Column(woeColumn)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]float64)
	var order []string
	covered := 0
	for row := 0; row < ds.Len(); row++ {
		cat, ok := conv.FormatCategory(catCol.Value(row))
		if !ok {
			continue
		}
		w, ok := woeCol.Float(row)
		if !ok {
			continue
		}
		if _, seen := groups[cat]; !seen {
			order = append(order, cat)
		}
		groups[cat] = append(groups[cat], w)
		covered++
	}

	if mode == ModeContinuous {
		conv.SortCategories(order)
	}
	rows := make([]SummaryRow, len(order))
	for i, cat := range order {
		values := groups[cat]
		rows[i] = SummaryRow{Label: cat, MeanWoE: stat.Mean(values, nil), Count: len(values)}
	}
	if mode == ModeDiscrete {
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].MeanWoE < rows[j].MeanWoE })
	}

	return &Summary{
		Variable:    variable,
		Mode:        mode,
		Rows:        rows,
		TotalRows:   ds.Len(),
		CoveredRows: covered,
	}, nil
}

// Summaries 为模型中的每个变量生成汇总报告。
func (m *Model) Summaries(ds *core.Dataset, mode Mode) ([]*Summary, error) {
	out := make([]*Summary, 0, len(m.Tables))
	for _, t := range m.Tables {
		s, err := Summarize(ds, t.Variable, m.ColumnName(t.Variable), mode)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
