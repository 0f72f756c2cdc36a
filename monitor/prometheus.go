package monitor

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/rushteam/scorekit/core"
)

// PrometheusMonitor 把数据质量信号导出为 Prometheus 指标：
//
//	<ns>_bin_rows{variable,bin}                  最近一次分箱各箱命中行数（gauge）
//	<ns>_unmapped_rows_total{variable}           未命中任何分箱的行数（counter）
//	<ns>_woe_degenerate_categories_total{variable} WoE 退化类别数（counter）
type PrometheusMonitor struct {
	binRows    *prometheus.GaugeVec
	unmapped   *prometheus.CounterVec
	degenerate *prometheus.CounterVec
}

// NewPrometheusMonitor 创建并在 reg 上注册指标。reg 为 nil 时使用 prometheus.DefaultRegisterer。
func NewPrometheusMonitor(reg prometheus.Registerer, namespace string) (*PrometheusMonitor, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "scorekit"
	}
	m := &PrometheusMonitor{
		binRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bin_rows",
			Help:      "Rows matched by each bin in the latest binning run.",
		}, []string{"variable", "bin"}),
		unmapped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unmapped_rows_total",
			Help:      "Rows not covered by any bin.",
		}, []string{"variable"}),
		degenerate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "woe_degenerate_categories_total",
			Help:      "Categories with zero goods or zero bads at WoE fit time.",
		}, []string{"variable"}),
	}
	for _, c := range []prometheus.Collector{m.binRows, m.unmapped, m.degenerate} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *PrometheusMonitor) RecordBinCount(_ context.Context, variable, bin string, count int) {
	m.binRows.WithLabelValues(variable, bin).Set(float64(count))
}

func (m *PrometheusMonitor) RecordUnmapped(_ context.Context, variable string, count int) {
	m.unmapped.WithLabelValues(variable).Add(float64(count))
}

func (m *PrometheusMonitor) RecordDegenerate(_ context.Context, variable, _ string) {
	m.degenerate.WithLabelValues(variable).Inc()
}

var _ core.Monitor = (*PrometheusMonitor)(nil)
