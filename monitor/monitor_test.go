package monitor

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scorekit/binning"
	"github.com/rushteam/scorekit/core"
)

func TestMemoryMonitor(t *testing.T) {
	m := NewMemoryMonitor()
	ctx := context.Background()

	m.RecordBinCount(ctx, "dti", "<=1.4", 3)
	m.RecordBinCount(ctx, "dti", "<=1.4", 5)
	m.RecordUnmapped(ctx, "delinq_2yrs", 2)
	m.RecordUnmapped(ctx, "delinq_2yrs", 1)
	m.RecordDegenerate(ctx, "grade", "G")
	m.RecordDegenerate(ctx, "grade", "A")
	m.RecordDegenerate(ctx, "grade", "G")

	dti, ok := m.Stats("dti")
	require.True(t, ok)
	assert.Equal(t, 5, dti.BinCounts["<=1.4"])

	delinq, _ := m.Stats("delinq_2yrs")
	assert.Equal(t, 3, delinq.Unmapped)

	grade, _ := m.Stats("grade")
	assert.Equal(t, []string{"A", "G"}, grade.Degenerate)

	assert.Equal(t, []string{"delinq_2yrs", "dti", "grade"}, m.Variables())

	grade.Degenerate[0] = "changed"
	again, _ := m.Stats("grade")
	assert.Equal(t, "A", again.Degenerate[0])

	m.Reset()
	_, ok = m.Stats("dti")
	assert.False(t, ok)
}

func TestPrometheusMonitor(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewPrometheusMonitor(reg, "test")
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordBinCount(ctx, "dti", ">35", 4)
	m.RecordUnmapped(ctx, "delinq_2yrs", 2)
	m.RecordUnmapped(ctx, "delinq_2yrs", 3)
	m.RecordDegenerate(ctx, "grade", "G")

	assert.Equal(t, 4.0, testutil.ToFloat64(m.binRows.WithLabelValues("dti", ">35")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.unmapped.WithLabelValues("delinq_2yrs")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.degenerate.WithLabelValues("grade")))

	_, err = NewPrometheusMonitor(reg, "test")
	assert.Error(t, err)
}

func TestMonitorReceivesBinnerSignals(t *testing.T) {
	mem := NewMemoryMonitor()
	prom, err := NewPrometheusMonitor(prometheus.NewRegistry(), "")
	require.NoError(t, err)

	ds, err := core.NewDataset(core.NewFloatColumn("delinq_2yrs", core.TypeContinuous, []float64{0, 1, 5, 9}))
	require.NoError(t, err)
	scheme, ok := binning.LoanScheme("delinq_2yrs")
	require.True(t, ok)

	_, report, err := binning.NewBinner(nil, Multi{mem, prom}).Apply(context.Background(), ds, scheme)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Unmapped)

	stats, _ := mem.Stats("delinq_2yrs")
	assert.Equal(t, 1, stats.Unmapped)
	assert.Equal(t, map[string]int{"0": 1, "1-3": 1, ">=4": 1}, stats.BinCounts)
	assert.Equal(t, 1.0, testutil.ToFloat64(prom.unmapped.WithLabelValues("delinq_2yrs")))
}
