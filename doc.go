// Package scorekit 是信用评分建模的数据准备工具包。
//
// 设计要点：
// - Dataset 不可变：每个变换返回新数据集，未改动的列在新旧数据集之间共享
// - 分箱/粗分类由声明式方案驱动（内置贷款方案或 YAML），引擎本身与数据集字段无关
// - WoE 表只在训练集上拟合，验证集/测试集只查表（可持久化到 Store 复用）
// - Pipeline-first: 清洗 → 打标 → 分箱 → 合并 → 编码，通过 Node 串联
package scorekit

import "github.com/rushteam/scorekit/pipeline"

// 轻量 facade：便于用户直接 import "scorekit" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindClean  = pipeline.KindClean
	KindLabel  = pipeline.KindLabel
	KindBin    = pipeline.KindBin
	KindMerge  = pipeline.KindMerge
	KindEncode = pipeline.KindEncode
)
