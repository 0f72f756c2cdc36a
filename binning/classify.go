package binning

import (
	"context"
	"log/slog"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pkg/conv"
)

// Classifier 把离散变量直接映射为粗分类指示列，省去 one-hot 展开再合并的往返。
//
// 输出与 OneHot + Merger.Merge 一致：未分组的类别各自一列（variable+sep+category，排序后在前），
// 随后按分组顺序每组一列（variable:label）。不同的是分组中的类别即使在数据中从未出现也会生成全 0 列。
type Classifier struct {
	Logger  *slog.Logger
	Monitor core.Monitor
}

func (c *Classifier) logger() *slog.Logger {
	if c == nil || c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

func (c *Classifier) monitor() core.Monitor {
	if c == nil || c.Monitor == nil {
		return core.NopMonitor{}
	}
	return c.Monitor
}

// Apply 执行分类并删除源列。
func (c *Classifier) Apply(ctx context.Context, ds *core.Dataset, spec MergeSpec) (*core.Dataset, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	col, err := ds.Column(spec.Variable)
	if err != nil {
		return nil, err
	}

	groupOf := make(map[string]int)
	for i, g := range spec.Groups {
		for _, m := range g.Members {
			groupOf[m] = i
		}
	}

	var standalone []string
	for _, cat := range Categories(col) {
		if _, grouped := groupOf[cat]; !grouped {
			standalone = append(standalone, cat)
		}
	}
	standaloneIdx := make(map[string]int, len(standalone))
	for i, cat := range standalone {
		standaloneIdx[cat] = i
	}

	standaloneVals := make([][]float64, len(standalone))
	for i := range standaloneVals {
		standaloneVals[i] = make([]float64, ds.Len())
	}
	groupVals := make([][]float64, len(spec.Groups))
	for i := range groupVals {
		groupVals[i] = make([]float64, ds.Len())
	}

	for row := 0; row < ds.Len(); row++ {
		cat, ok := conv.FormatCategory(col.Value(row))
		if !ok {
			continue
		}
		if gi, grouped := groupOf[cat]; grouped {
			groupVals[gi][row] = 1
			continue
		}
		standaloneVals[standaloneIdx[cat]][row] = 1
	}

	columns := make([]*core.Column, 0, len(standalone)+len(spec.Groups))
	for i, cat := range standalone {
		columns = append(columns, core.NewFloatColumn(spec.DummyName(cat), core.TypeIndicator, standaloneVals[i]))
	}
	m := c.monitor()
	for i, g := range spec.Groups {
		count := 0
		for _, v := range groupVals[i] {
			count += int(v)
		}
		m.RecordBinCount(ctx, spec.Variable, g.OutputLabel(), count)
		columns = append(columns, core.NewFloatColumn(spec.GroupName(g), core.TypeIndicator, groupVals[i]))
	}

	c.logger().DebugContext(ctx, "classified discrete variable",
		slog.String("variable", spec.Variable),
		slog.Int("groups", len(spec.Groups)),
		slog.Int("standalone", len(standalone)))

	out, err := ds.Drop(spec.Variable)
	if err != nil {
		return nil, err
	}
	return out.With(columns...)
}
