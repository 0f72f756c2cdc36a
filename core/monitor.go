package core

import "context"

// Monitor 是数据质量观测接口。
//
// 分箱空洞、WoE 无定义等数值边界情况不会报错，而是通过 Monitor 暴露出来，
// 供下游检查。实现见 monitor 包（内存 / Prometheus）。
type Monitor interface {
	// RecordBinCount 记录某个分箱命中的行数
	RecordBinCount(ctx context.Context, variable, bin string, count int)

	// RecordUnmapped 记录没有命中任何分箱的行数（分箱边界未覆盖）
	RecordUnmapped(ctx context.Context, variable string, count int)

	// RecordDegenerate 记录拟合时好/坏样本数为 0 的类别
	RecordDegenerate(ctx context.Context, variable, category string)
}

// NopMonitor 丢弃所有记录。
type NopMonitor struct{}

func (NopMonitor) RecordBinCount(context.Context, string, string, int) {}
func (NopMonitor) RecordUnmapped(context.Context, string, int)         {}
func (NopMonitor) RecordDegenerate(context.Context, string, string)    {}

var _ Monitor = NopMonitor{}
