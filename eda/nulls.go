// Package eda 提供探索性分析的只读汇总。
package eda

import (
	"sort"

	"github.com/rushteam/scorekit/core"
)

// NullSummary 是单列的缺失统计。
type NullSummary struct {
	Column  string  `json:"column"`
	Missing int     `json:"missing"`
	Percent float64 `json:"percent"` // 占总行数的百分比（0-100）
}

// NullValues 统计每列缺失值个数与百分比，按百分比降序，相同时保持列顺序。空数据集的百分比为 0。
func NullValues(ds *core.Dataset) []NullSummary {
	cols := ds.Columns()
	out := make([]NullSummary, len(cols))
	for i, c := range cols {
		n := c.NullCount()
		out[i] = NullSummary{Column: c.Name(), Missing: n}
		if ds.Len() > 0 {
			out[i].Percent = 100 * float64(n) / float64(ds.Len())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Percent > out[j].Percent })
	return out
}

// WithMissing 只返回存在缺失值的列。
func WithMissing(summary []NullSummary) []NullSummary {
	out := make([]NullSummary, 0, len(summary))
	for _, s := range summary {
		if s.Missing > 0 {
			out = append(out, s)
		}
	}
	return out
}
