package prep

import (
	"context"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
)

// DateNode 解析日期列。
type DateNode struct {
	Columns []string
}

func (n *DateNode) Name() string        { return "prep.to_date" }
func (n *DateNode) Kind() pipeline.Kind { return pipeline.KindClean }
func (n *DateNode) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	return ObjectToDate(ds, n.Columns...)
}

// DropNode 删除匹配的列。
type DropNode struct {
	Spec DropSpec
}

func (n *DropNode) Name() string        { return "prep.drop_columns" }
func (n *DropNode) Kind() pipeline.Kind { return pipeline.KindClean }
func (n *DropNode) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	return DropMatching(ds, n.Spec)
}

// EmpLengthNode 把 emp_length 转为数值。
type EmpLengthNode struct{}

func (n *EmpLengthNode) Name() string        { return "prep.emp_length" }
func (n *EmpLengthNode) Kind() pipeline.Kind { return pipeline.KindClean }
func (n *EmpLengthNode) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	return EmpLengthToNumeric(ds)
}

// VintageNode 筛选成熟批次。
type VintageNode struct {
	Options VintageOptions
}

func (n *VintageNode) Name() string        { return "prep.vintage" }
func (n *VintageNode) Kind() pipeline.Kind { return pipeline.KindClean }
func (n *VintageNode) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	return SelectVintages(ds, n.Options)
}

// GoodBadNode 生成好/坏目标列。
type GoodBadNode struct {
	StatusColumn string
	TargetColumn string
}

func (n *GoodBadNode) Name() string        { return "prep.good_bad" }
func (n *GoodBadNode) Kind() pipeline.Kind { return pipeline.KindLabel }
func (n *GoodBadNode) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	return GoodBadDefinition(ds, n.StatusColumn, n.TargetColumn)
}

// FilterNode 按 CEL 表达式过滤行。
type FilterNode struct {
	Expr string
}

func (n *FilterNode) Name() string        { return "prep.filter" }
func (n *FilterNode) Kind() pipeline.Kind { return pipeline.KindClean }
func (n *FilterNode) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	return Filter(ds, n.Expr)
}

var (
	_ pipeline.Node = (*DateNode)(nil)
	_ pipeline.Node = (*DropNode)(nil)
	_ pipeline.Node = (*EmpLengthNode)(nil)
	_ pipeline.Node = (*VintageNode)(nil)
	_ pipeline.Node = (*GoodBadNode)(nil)
	_ pipeline.Node = (*FilterNode)(nil)
)
