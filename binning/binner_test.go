package binning

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scorekit/core"
)

func mustDataset(t *testing.T, cols ...*core.Column) *core.Dataset {
	t.Helper()
	ds, err := core.NewDataset(cols...)
	require.NoError(t, err)
	return ds
}

func floatsOf(t *testing.T, ds *core.Dataset, name string) []float64 {
	t.Helper()
	col, err := ds.Column(name)
	require.NoError(t, err)
	out := make([]float64, col.Len())
	for i := range out {
		v, ok := col.Float(i)
		require.True(t, ok, "%s row %d", name, i)
		out[i] = v
	}
	return out
}

func rowSums(t *testing.T, ds *core.Dataset, names []string) []float64 {
	t.Helper()
	sums := make([]float64, ds.Len())
	for _, n := range names {
		for i, v := range floatsOf(t, ds, n) {
			sums[i] += v
		}
	}
	return sums
}

func TestBinner_IndicatorsSumToOne(t *testing.T) {
	scheme, ok := LoanScheme("int_rate")
	require.True(t, ok)

	rates := []float64{5.32, 9.548, 9.549, 12.025, 13.1, 15.74, 19.99, 20.281, 20.3, 28.99}
	ds := mustDataset(t, core.NewFloatColumn("int_rate", core.TypeContinuous, rates))

	out, report, err := NewBinner(nil, nil).Apply(context.Background(), ds, scheme)
	require.NoError(t, err)

	for i, s := range rowSums(t, out, scheme.ColumnNames()) {
		assert.Equal(t, 1.0, s, "row %d (int_rate=%v)", i, rates[i])
	}
	assert.Zero(t, report.Unmapped)
	assert.Zero(t, report.Overlapping)
	assert.Equal(t, len(rates), report.Rows)
}

func TestBinner_SharedBoundaryFallsIntoLowerBin(t *testing.T) {
	for _, scheme := range LoanContinuousSchemes() {
		for i := 0; i+1 < len(scheme.Bins); i++ {
			lower, ok := scheme.Bins[i].(Interval)
			if !ok || lower.Upper == nil || !lower.UpperClosed {
				continue
			}
			upper, ok := scheme.Bins[i+1].(Interval)
			if !ok || upper.Lower == nil || *upper.Lower != *lower.Upper {
				continue
			}
			edge := *lower.Upper
			in, err := lower.Contains(edge)
			require.NoError(t, err)
			assert.True(t, in, "%s: %v should be in %s", scheme.Variable, edge, lower.Label())
			in, err = upper.Contains(edge)
			require.NoError(t, err)
			assert.False(t, in, "%s: %v should not be in %s", scheme.Variable, edge, upper.Label())
		}
	}

	scheme, _ := LoanScheme("int_rate")
	ds := mustDataset(t, core.NewFloatColumn("int_rate", core.TypeContinuous, []float64{9.548}))
	out, _, err := NewBinner(nil, nil).Apply(context.Background(), ds, scheme)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, floatsOf(t, out, "int_rate:<9.548"))
	assert.Equal(t, []float64{0}, floatsOf(t, out, "int_rate:9.548-12.025"))
}

func TestBinner_MissingBin(t *testing.T) {
	scheme, ok := LoanScheme("mths_since_last_delinq")
	require.True(t, ok)
	require.True(t, scheme.HasMissingBin())

	ds := mustDataset(t, core.NewFloatColumn("mths_since_last_delinq", core.TypeContinuous,
		[]float64{math.NaN(), 0, 3, 4, 30, 31, 56, 57, 120}))

	out, report, err := NewBinner(nil, nil).Apply(context.Background(), ds, scheme)
	require.NoError(t, err)

	missing := floatsOf(t, out, "mths_since_last_delinq:Missing")
	assert.Equal(t, []float64{1, 0, 0, 0, 0, 0, 0, 0, 0}, missing)
	for _, name := range scheme.ColumnNames()[1:] {
		assert.Equal(t, 0.0, floatsOf(t, out, name)[0], "missing row must not hit %s", name)
	}
	for _, s := range rowSums(t, out, scheme.ColumnNames()) {
		assert.Equal(t, 1.0, s)
	}
	assert.Equal(t, 1, report.Counts[0].Count)
}

func TestBinner_DelinqGapIsUnmapped(t *testing.T) {
	scheme, _ := LoanScheme("delinq_2yrs")
	ds := mustDataset(t, core.NewFloatColumn("delinq_2yrs", core.TypeContinuous, []float64{0, 2, 5, 8, 9, 12}))

	out, report, err := NewBinner(nil, nil).Apply(context.Background(), ds, scheme)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Unmapped)
	assert.Equal(t, []float64{0, 0, 0, 0, 1, 1}, floatsOf(t, out, "delinq_2yrs:>=4"))
	assert.Equal(t, []float64{1, 1, 0, 0, 1, 1}, rowSums(t, out, scheme.ColumnNames()))
}

func TestBinner_TopBinFollowsLiveMax(t *testing.T) {
	scheme, _ := LoanScheme("mths_since_earliest_cr_line")
	values := []float64{12, 150, 200, 260, 300, 353, 700, 912}
	ds := mustDataset(t, core.NewFloatColumn("mths_since_earliest_cr_line", core.TypeContinuous, values))

	out, report, err := NewBinner(nil, nil).Apply(context.Background(), ds, scheme)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 0, 0, 0, 1, 1, 1}, floatsOf(t, out, "mths_since_earliest_cr_line:>352"))
	assert.Zero(t, report.Unmapped)
}

func TestBinner_SourceRemovedInputUntouched(t *testing.T) {
	scheme, _ := LoanScheme("dti")
	ds := mustDataset(t,
		core.NewFloatColumn("dti", core.TypeContinuous, []float64{1.0, 40}),
		core.NewFloatColumn("good_bad", core.TypeBinary, []float64{1, 0}),
	)

	out, _, err := NewBinner(nil, nil).Apply(context.Background(), ds, scheme)
	require.NoError(t, err)

	assert.False(t, out.HasColumn("dti"))
	assert.True(t, out.HasColumn("good_bad"))
	assert.Equal(t, 1+len(scheme.Bins), out.Width())
	assert.Equal(t, []string{"dti", "good_bad"}, ds.Names())

	keep := &Binner{KeepSource: true}
	out, _, err = keep.Apply(context.Background(), ds, scheme)
	require.NoError(t, err)
	assert.True(t, out.HasColumn("dti"))
}

func TestBinner_MissingColumn(t *testing.T) {
	scheme, _ := LoanScheme("dti")
	ds := mustDataset(t, core.NewFloatColumn("int_rate", core.TypeContinuous, []float64{1}))

	_, _, err := NewBinner(nil, nil).Apply(context.Background(), ds, scheme)
	require.Error(t, err)
	assert.True(t, core.IsColumnNotFound(err))
}

func TestBinner_RejectsCategoricalColumn(t *testing.T) {
	scheme, _ := LoanScheme("int_rate")
	ds := mustDataset(t, core.NewStringColumn("int_rate", []string{"9.5", "13.1"}))

	_, _, err := NewBinner(nil, nil).Apply(context.Background(), ds, scheme)
	require.Error(t, err)
	assert.True(t, core.IsInvalidInput(err))

	dates := mustDataset(t, core.NewColumn("int_rate", core.TypeDate, []any{nil}))
	_, _, err = NewBinner(nil, nil).Apply(context.Background(), dates, scheme)
	assert.True(t, core.IsInvalidInput(err))
}

func TestBinner_ApplyAll(t *testing.T) {
	ds := mustDataset(t,
		core.NewFloatColumn("pub_rec", core.TypeContinuous, []float64{0, 3, 7}),
		core.NewFloatColumn("total_acc", core.TypeContinuous, []float64{27, 28, 60}),
	)
	pub, _ := LoanScheme("pub_rec")
	total, _ := LoanScheme("total_acc")

	out, reports, err := NewBinner(nil, nil).ApplyAll(context.Background(), ds, pub, total)
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, []float64{0, 1, 0}, floatsOf(t, out, "pub_rec:3-4"))
	assert.Equal(t, []float64{1, 0, 0}, floatsOf(t, out, "total_acc:<=27"))
	assert.Equal(t, []float64{0, 0, 1}, floatsOf(t, out, "total_acc:>=52"))
}

func TestBinner_ExprBin(t *testing.T) {
	low, err := NewExpr("low", "!missing && value < 10")
	require.NoError(t, err)
	high, err := NewExpr("high", "!missing && value >= 10")
	require.NoError(t, err)
	scheme := Scheme{Variable: "x", Bins: []Bin{Missing{}, low, high}}

	ds := mustDataset(t, core.NewFloatColumn("x", core.TypeContinuous, []float64{math.NaN(), 3, 10}))
	out, report, err := NewBinner(nil, nil).Apply(context.Background(), ds, scheme)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0, 0}, floatsOf(t, out, "x:Missing"))
	assert.Equal(t, []float64{0, 1, 0}, floatsOf(t, out, "x:low"))
	assert.Equal(t, []float64{0, 0, 1}, floatsOf(t, out, "x:high"))
	assert.Zero(t, report.Unmapped)
}

func TestScheme_Validate(t *testing.T) {
	err := Scheme{Variable: "x", Bins: []Bin{Equal("a", 1), Equal("a", 2)}}.Validate()
	assert.True(t, core.IsInvalidConfig(err))

	err = Scheme{Variable: "x"}.Validate()
	assert.True(t, core.IsInvalidConfig(err))
}
