package binning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rushteam/scorekit/core"
)

// Group 是一个粗分类分组：若干原始类别合并为一个箱。
type Group struct {
	// Label 输出标签；为空时使用 Members 以 "_" 连接
	Label   string
	Members []string
}

// OutputLabel 返回分组的输出标签。
func (g Group) OutputLabel() string {
	if g.Label != "" {
		return g.Label
	}
	return strings.Join(g.Members, "_")
}

// MergeSpec 描述一个离散变量的粗分类方案。
type MergeSpec struct {
	Variable string
	// DummySep 是上游哑变量列名的分隔符（addr_state_IA 为 "_"，purpose:car 为 ":"）
	DummySep string
	Groups   []Group
}

func (s MergeSpec) sep() string {
	if s.DummySep == "" {
		return DefaultDummySep
	}
	return s.DummySep
}

// DummyName 返回某个原始类别的哑变量列名。
func (s MergeSpec) DummyName(category string) string {
	return s.Variable + s.sep() + category
}

// GroupName 返回分组合并后的列名。
func (s MergeSpec) GroupName(g Group) string {
	return s.Variable + LabelSep + g.OutputLabel()
}

// Validate 检查分组两两不相交、标签不重复。重叠分组会使求和结果大于 1，因此在执行前拒绝。
func (s MergeSpec) Validate() error {
	if s.Variable == "" {
		return core.ErrInvalidConfig(core.ModuleBinning, "merge spec without variable")
	}
	owner := make(map[string]string)
	labels := make(map[string]struct{}, len(s.Groups))
	for _, g := range s.Groups {
		if len(g.Members) == 0 {
			return core.ErrInvalidConfig(core.ModuleBinning, "%s: empty group %q", s.Variable, g.Label)
		}
		label := g.OutputLabel()
		if _, dup := labels[label]; dup {
			return core.ErrInvalidConfig(core.ModuleBinning, "%s: duplicate group %q", s.Variable, label)
		}
		labels[label] = struct{}{}
		for _, m := range g.Members {
			if prev, ok := owner[m]; ok {
				return core.ErrInvalidConfig(core.ModuleBinning, "%s: category %q in both %q and %q", s.Variable, m, prev, label)
			}
			owner[m] = label
		}
	}
	return nil
}

// Merger 把上游 one-hot 哑变量按分组求和为粗分类指示列，并删除被合并的列。
// 未出现在任何分组中的哑变量保持不变。
type Merger struct {
	Logger *slog.Logger
}

func (m *Merger) logger() *slog.Logger {
	if m == nil || m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

// Merge 执行合并，返回新数据集。
//
// 分组的源列全部缺失且合并列已存在时视为已合并，跳过（重复执行是幂等的）；
// 只缺失部分源列时返回 COLUMN_NOT_FOUND。
func (m *Merger) Merge(ctx context.Context, ds *core.Dataset, spec MergeSpec) (*core.Dataset, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	cur := ds
	for _, g := range spec.Groups {
		target := spec.GroupName(g)
		sources := make([]*core.Column, 0, len(g.Members))
		var missing []string
		for _, member := range g.Members {
			col, err := cur.Column(spec.DummyName(member))
			if err != nil {
				missing = append(missing, spec.DummyName(member))
				continue
			}
			sources = append(sources, col)
		}

		if len(sources) == 0 && cur.HasColumn(target) {
			m.logger().DebugContext(ctx, "group already merged", slog.String("column", target))
			continue
		}
		if len(missing) > 0 {
			return nil, fmt.Errorf("merge %s: %w", target, core.ErrColumnNotFound(missing[0]))
		}

		sum := make([]float64, cur.Len())
		for _, col := range sources {
			for row := range sum {
				if v, ok := col.Float(row); ok {
					sum[row] += v
				}
			}
		}

		// 先创建合并列，再删除源列
		next, err := cur.With(core.NewFloatColumn(target, core.TypeIndicator, sum))
		if err != nil {
			return nil, fmt.Errorf("merge %s: %w", target, err)
		}
		names := make([]string, len(sources))
		for i, col := range sources {
			names[i] = col.Name()
		}
		if next, err = next.Drop(names...); err != nil {
			return nil, fmt.Errorf("merge %s: %w", target, err)
		}
		cur = next
	}
	return cur, nil
}

// MergeAll 依次执行多个合并方案。
func (m *Merger) MergeAll(ctx context.Context, ds *core.Dataset, specs ...MergeSpec) (*core.Dataset, error) {
	cur := ds
	for _, spec := range specs {
		next, err := m.Merge(ctx, cur, spec)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}
