package pipeline

import (
	"context"

	"github.com/rushteam/scorekit/core"
)

// Kind 用于标记 Node 类型，方便观测/编排（例如按阶段打点）。
type Kind string

const (
	KindClean  Kind = "clean"  // 清洗阶段：日期解析、删列、类型转换、行过滤
	KindLabel  Kind = "label"  // 打标阶段：生成好/坏目标列
	KindBin    Kind = "bin"    // 分箱阶段：连续变量分箱、离散变量 one-hot
	KindMerge  Kind = "merge"  // 粗分类阶段：合并哑变量
	KindEncode Kind = "encode" // 编码阶段：WoE 等
)

// Node 是 Pipeline 的最小可扩展单元。
// 统一采用“输入数据集 -> 输出新数据集”的形态，输入数据集不被修改。
type Node interface {
	Name() string
	Kind() Kind

	Process(ctx context.Context, ds *core.Dataset) (*core.Dataset, error)
}

// NodeBuilder 根据配置构建 Node。
type NodeBuilder func(config map[string]any) (Node, error)
