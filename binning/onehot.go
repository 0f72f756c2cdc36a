package binning

import (
	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/conv"
)

// DefaultDummySep 是哑变量列名中变量名与类别之间的默认分隔符。
const DefaultDummySep = "_"

// Categories 返回列中出现过的类别（已排序，不含缺失）。
func Categories(col *core.Column) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := 0; i < col.Len(); i++ {
		s, ok := conv.FormatCategory(col.Value(i))
		if !ok {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	conv.SortCategories(out)
	return out
}

// OneHot 把离散变量展开为每个类别一列的哑变量（列名 variable+sep+category），并删除源列。
// 类别按排序后的顺序追加到末尾；缺失值所在行的哑变量全为 0。
func OneHot(ds *core.Dataset, variable, sep string) (*core.Dataset, []string, error) {
	if sep == "" {
		sep = DefaultDummySep
	}
	col, err := ds.Column(variable)
	if err != nil {
		return nil, nil, err
	}

	cats := Categories(col)
	index := make(map[string]int, len(cats))
	dummies := make([][]float64, len(cats))
	for i, c := range cats {
		index[c] = i
		dummies[i] = make([]float64, ds.Len())
	}
	for row := 0; row < ds.Len(); row++ {
		s, ok := conv.FormatCategory(col.Value(row))
		if !ok {
			continue
		}
		dummies[index[s]][row] = 1
	}

	names := make([]string, len(cats))
	columns := make([]*core.Column, len(cats))
	for i, c := range cats {
		names[i] = variable + sep + c
		columns[i] = core.NewFloatColumn(names[i], core.TypeIndicator, dummies[i])
	}

	out, err := ds.Drop(variable)
	if err != nil {
		return nil, nil, err
	}
	out, err = out.With(columns...)
	if err != nil {
		return nil, nil, err
	}
	return out, names, nil
}
