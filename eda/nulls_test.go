package eda

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scorekit/core"
)

func TestNullValues(t *testing.T) {
	nan := math.NaN()
	ds, err := core.NewDataset(
		core.NewFloatColumn("dti", core.TypeContinuous, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}),
		core.NewFloatColumn("mths_since_last_delinq", core.TypeContinuous, []float64{nan, 1, nan, 3, 4, 5, nan, 7, 8, 9}),
		core.NewStringColumn("emp_title", []string{"", "a", "b", "c", "d", "e", "f", "g", "h", ""}),
		core.NewColumn("mths_since_last_record", core.TypeContinuous, []any{nil, nil, nil, nil, nil, 1.0, 2.0, 3.0, 4.0, nil}),
	)
	require.NoError(t, err)

	got := NullValues(ds)
	require.Len(t, got, 4)

	assert.Equal(t, NullSummary{Column: "mths_since_last_record", Missing: 6, Percent: 60}, got[0])
	assert.Equal(t, NullSummary{Column: "mths_since_last_delinq", Missing: 3, Percent: 30}, got[1])
	assert.Equal(t, "emp_title", got[2].Column)
	assert.InDelta(t, 20.0, got[2].Percent, 1e-9)
	assert.Equal(t, NullSummary{Column: "dti", Missing: 0, Percent: 0}, got[3])

	assert.Len(t, WithMissing(got), 3)
	assert.Equal(t, []string{"dti", "mths_since_last_delinq", "emp_title", "mths_since_last_record"}, ds.Names())
}

func TestNullValues_TiesKeepColumnOrder(t *testing.T) {
	ds, err := core.NewDataset(
		core.NewColumn("b", core.TypeContinuous, []any{nil, 1.0}),
		core.NewColumn("a", core.TypeContinuous, []any{2.0, nil}),
	)
	require.NoError(t, err)

	got := NullValues(ds)
	assert.Equal(t, "b", got[0].Column)
	assert.Equal(t, "a", got[1].Column)
	assert.Equal(t, 50.0, got[0].Percent)
}

func TestNullValues_Empty(t *testing.T) {
	ds, err := core.NewDataset(core.NewColumn("x", core.TypeContinuous, nil))
	require.NoError(t, err)

	got := NullValues(ds)
	require.Len(t, got, 1)
	assert.Equal(t, 0.0, got[0].Percent)
}
