package woe

import (
	"context"
	"sync"

	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
)

// EncodeNode 在流水线中追加 WoE 列。
//
// 第一次运行在当前数据集（训练集）上拟合，之后的运行（验证集、测试集）只查表、不再拟合。
// 设置 Store 时表按 (target, variable) 持久化，其他进程或重建的流水线也复用同一张表。
type EncodeNode struct {
	Encoder *Encoder
	Store   *TableStore

	mu    sync.Mutex
	model *Model
}

func (n *EncodeNode) Name() string        { return "woe.encode" }
func (n *EncodeNode) Kind() pipeline.Kind { return pipeline.KindEncode }
func (n *EncodeNode) Process(ctx context.Context, ds *core.Dataset) (*core.Dataset, error) {
	model, err := n.fitted(ctx, ds)
	if err != nil {
		return nil, err
	}
	return model.Transform(ctx, ds)
}

func (n *EncodeNode) fitted(ctx context.Context, ds *core.Dataset) (*Model, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.model != nil {
		return n.model, nil
	}
	model, err := n.Encoder.FitOrLoad(ctx, ds, n.Store)
	if err != nil {
		return nil, err
	}
	n.model = model
	return model, nil
}

// Model 返回第一次运行得到的模型，尚未运行时为 nil。
func (n *EncodeNode) Model() *Model {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.model
}

// ApplyNode 用已拟合的 Model 追加 WoE 列，从不拟合。
// Model 为空时第一次运行从 Store 加载 Target 下 Variables 的表。
type ApplyNode struct {
	Model *Model

	Store     *TableStore
	Target    string
	Variables []string
	Suffix    string

	mu sync.Mutex
}

func (n *ApplyNode) Name() string        { return "woe.apply" }
func (n *ApplyNode) Kind() pipeline.Kind { return pipeline.KindEncode }
func (n *ApplyNode) Process(ctx context.Context, ds *core.Dataset) (*core.Dataset, error) {
	model, err := n.load(ctx)
	if err != nil {
		return nil, err
	}
	return model.Transform(ctx, ds)
}

func (n *ApplyNode) load(ctx context.Context) (*Model, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.Model != nil {
		return n.Model, nil
	}
	model, err := LoadModel(ctx, n.Store, n.Target, n.Suffix, n.Variables...)
	if err != nil {
		return nil, err
	}
	n.Model = model
	return model, nil
}

var (
	_ pipeline.Node = (*EncodeNode)(nil)
	_ pipeline.Node = (*ApplyNode)(nil)
)
