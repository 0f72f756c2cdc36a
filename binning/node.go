package binning

import (
	"context"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
)

// BinNode 对若干连续变量依次分箱。
type BinNode struct {
	Binner  *Binner
	Schemes []Scheme
}

func (n *BinNode) Name() string        { return "bin.continuous" }
func (n *BinNode) Kind() pipeline.Kind { return pipeline.KindBin }
func (n *BinNode) Process(ctx context.Context, ds *core.Dataset) (*core.Dataset, error) {
	out, _, err := n.Binner.ApplyAll(ctx, ds, n.Schemes...)
	return out, err
}

// OneHotNode 把离散变量展开为哑变量。
type OneHotNode struct {
	Variables []string
	Sep       string
}

func (n *OneHotNode) Name() string        { return "bin.onehot" }
func (n *OneHotNode) Kind() pipeline.Kind { return pipeline.KindBin }
func (n *OneHotNode) Process(_ context.Context, ds *core.Dataset) (*core.Dataset, error) {
	cur := ds
	for _, v := range n.Variables {
		next, _, err := OneHot(cur, v, n.Sep)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

// MergeNode 合并哑变量。
type MergeNode struct {
	Merger *Merger
	Specs  []MergeSpec
}

func (n *MergeNode) Name() string        { return "bin.merge" }
func (n *MergeNode) Kind() pipeline.Kind { return pipeline.KindMerge }
func (n *MergeNode) Process(ctx context.Context, ds *core.Dataset) (*core.Dataset, error) {
	return n.Merger.MergeAll(ctx, ds, n.Specs...)
}

// ClassifyNode 把离散变量直接映射为粗分类指示列。
type ClassifyNode struct {
	Classifier *Classifier
	Specs      []MergeSpec
}

func (n *ClassifyNode) Name() string        { return "bin.classify" }
func (n *ClassifyNode) Kind() pipeline.Kind { return pipeline.KindMerge }
func (n *ClassifyNode) Process(ctx context.Context, ds *core.Dataset) (*core.Dataset, error) {
	cur := ds
	for _, spec := range n.Specs {
		next, err := n.Classifier.Apply(ctx, cur, spec)
		if err != nil {
			return nil, err
		}
		cur = next
	}
	return cur, nil
}

var (
	_ pipeline.Node = (*BinNode)(nil)
	_ pipeline.Node = (*OneHotNode)(nil)
	_ pipeline.Node = (*MergeNode)(nil)
	_ pipeline.Node = (*ClassifyNode)(nil)
)
