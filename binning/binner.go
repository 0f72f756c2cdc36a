package binning

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/rushteam/scorekit/core"
)

// BinCount 是单个分箱的命中统计。
type BinCount struct {
	Label  string
	Column string
	Count  int
}

// BinReport 是一次分箱的数据质量报告。
//
// Unmapped > 0 表示分箱边界没有覆盖某些取值（这些行的指示列全为 0），
// Overlapping > 0 表示有行同时命中多个分箱。二者都不是错误。
type BinReport struct {
	Variable    string
	Rows        int
	Counts      []BinCount
	Unmapped    int
	Overlapping int
}

// Binner 把连续变量展开为每个分箱一列的 0/1 指示列，并删除源列。
type Binner struct {
	Logger  *slog.Logger
	Monitor core.Monitor
	// KeepSource 为 true 时保留源列（默认删除：分箱后原始值不再进入建模数据）
	KeepSource bool
}

// NewBinner 创建分箱器，logger/monitor 为 nil 时使用默认值。
func NewBinner(logger *slog.Logger, monitor core.Monitor) *Binner {
	return &Binner{Logger: logger, Monitor: monitor}
}

func (b *Binner) logger() *slog.Logger {
	if b == nil || b.Logger == nil {
		return slog.Default()
	}
	return b.Logger
}

func (b *Binner) monitor() core.Monitor {
	if b == nil || b.Monitor == nil {
		return core.NopMonitor{}
	}
	return b.Monitor
}

// Apply 对 ds 应用一个分箱方案，返回新的数据集，ds 本身不变。
// 源列缺失时返回 COLUMN_NOT_FOUND，源列不是连续/指示列时返回 INVALID_INPUT。
func (b *Binner) Apply(ctx context.Context, ds *core.Dataset, scheme Scheme) (*core.Dataset, *BinReport, error) {
	if err := scheme.Validate(); err != nil {
		return nil, nil, err
	}
	col, err := ds.Column(scheme.Variable)
	if err != nil {
		return nil, nil, err
	}
	if t := col.Type(); t != core.TypeContinuous && t != core.TypeIndicator {
		return nil, nil, core.ErrInvalidInput(core.ModuleBinning, "%s is %s, binning needs a continuous column", scheme.Variable, t)
	}

	bins := scheme.resolve(col)
	indicators := make([][]float64, len(bins))
	for i := range indicators {
		indicators[i] = make([]float64, ds.Len())
	}

	report := &BinReport{Variable: scheme.Variable, Rows: ds.Len(), Counts: make([]BinCount, len(bins))}
	for row := 0; row < ds.Len(); row++ {
		v := col.Value(row)
		hits := 0
		for i, bin := range bins {
			ok, err := bin.Contains(v)
			if err != nil {
				return nil, nil, fmt.Errorf("bin %s row %d: %w", scheme.ColumnName(bin), row, err)
			}
			if ok {
				indicators[i][row] = 1
				report.Counts[i].Count++
				hits++
			}
		}
		switch {
		case hits == 0:
			report.Unmapped++
		case hits > 1:
			report.Overlapping++
		}
	}

	columns := make([]*core.Column, len(bins))
	for i, bin := range bins {
		name := scheme.ColumnName(bin)
		report.Counts[i].Label = bin.Label()
		report.Counts[i].Column = name
		columns[i] = core.NewFloatColumn(name, core.TypeIndicator, indicators[i])
	}

	out, err := ds.With(columns...)
	if err != nil {
		return nil, nil, err
	}
	if !b.KeepSource {
		if out, err = out.Drop(scheme.Variable); err != nil {
			return nil, nil, err
		}
	}

	b.record(ctx, scheme, report)
	return out, report, nil
}

// ApplyAll 依次应用多个方案，任一失败立即返回。
func (b *Binner) ApplyAll(ctx context.Context, ds *core.Dataset, schemes ...Scheme) (*core.Dataset, []*BinReport, error) {
	reports := make([]*BinReport, 0, len(schemes))
	cur := ds
	for _, s := range schemes {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		next, report, err := b.Apply(ctx, cur, s)
		if err != nil {
			return nil, nil, fmt.Errorf("bin %s: %w", s.Variable, err)
		}
		cur = next
		reports = append(reports, report)
	}
	return cur, reports, nil
}

func (b *Binner) record(ctx context.Context, scheme Scheme, report *BinReport) {
	m := b.monitor()
	for _, c := range report.Counts {
		m.RecordBinCount(ctx, scheme.Variable, c.Label, c.Count)
	}
	if report.Unmapped > 0 {
		m.RecordUnmapped(ctx, scheme.Variable, report.Unmapped)
		attrs := []any{
			slog.String("variable", scheme.Variable),
			slog.Int("unmapped", report.Unmapped),
			slog.Int("rows", report.Rows),
		}
		if scheme.Note != "" {
			attrs = append(attrs, slog.String("note", scheme.Note))
		}
		b.logger().WarnContext(ctx, "rows not covered by any bin", attrs...)
	}
	if report.Overlapping > 0 {
		b.logger().WarnContext(ctx, "rows matched more than one bin",
			slog.String("variable", scheme.Variable),
			slog.Int("overlapping", report.Overlapping))
	}
}
