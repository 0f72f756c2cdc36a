package prep

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scorekit/core"
)

func TestObjectToDate(t *testing.T) {
	ds, err := core.NewDataset(
		core.NewStringColumn("issue_d", []string{"Dec-2015", "Jan-2018", ""}),
		core.NewStringColumn("earliest_cr_line", []string{"Aug-1994", "Mar-2001", "Nov-1987"}),
	)
	require.NoError(t, err)

	out, err := ObjectToDate(ds, "issue_d", "earliest_cr_line")
	require.NoError(t, err)
	assert.Equal(t, []string{"issue_d", "earliest_cr_line", "issue_d_date", "earliest_cr_line_date"}, out.Names())

	col, err := out.Column("issue_d_date")
	require.NoError(t, err)
	assert.Equal(t, core.TypeDate, col.Type())
	d, ok := col.Time(0)
	require.True(t, ok)
	assert.Equal(t, time.Date(2015, time.December, 1, 0, 0, 0, 0, time.UTC), d)
	assert.True(t, col.IsNull(2))

	assert.False(t, ds.HasColumn("issue_d_date"))
}

func TestObjectToDate_Errors(t *testing.T) {
	ds, err := core.NewDataset(core.NewStringColumn("issue_d", []string{"2015-12-01"}))
	require.NoError(t, err)

	_, err = ObjectToDate(ds, "issue_d")
	assert.True(t, core.IsInvalidInput(err))

	_, err = ObjectToDate(ds, "last_pymnt_d")
	assert.True(t, core.IsColumnNotFound(err))
}

func TestDropColumns(t *testing.T) {
	names := []string{"id", "member_id", "url", "loan_amnt", "sec_app_fico_range_low", "annual_inc_joint",
		"hardship_flag", "debt_settlement_flag", "settlement_amount", "dti"}
	cols := make([]*core.Column, len(names))
	for i, n := range names {
		cols[i] = core.NewFloatColumn(n, core.TypeContinuous, []float64{1})
	}
	ds, err := core.NewDataset(cols...)
	require.NoError(t, err)

	out, err := DropColumns(ds)
	require.NoError(t, err)
	assert.Equal(t, []string{"loan_amnt", "dti"}, out.Names())
	assert.Equal(t, len(names), ds.Width())

	noID, err := ds.Drop("id")
	require.NoError(t, err)
	_, err = DropColumns(noID)
	assert.True(t, core.IsColumnNotFound(err))
}

func TestEmpLengthToNumeric(t *testing.T) {
	ds, err := core.NewDataset(core.NewStringColumn("emp_length",
		[]string{"< 1 year", "1 year", "5 years", "10+ years", ""}))
	require.NoError(t, err)

	out, err := EmpLengthToNumeric(ds)
	require.NoError(t, err)
	col, err := out.Column("emp_length")
	require.NoError(t, err)
	assert.Equal(t, core.TypeContinuous, col.Type())
	assert.Equal(t, []any{0.0, 1.0, 5.0, 10.0, nil}, col.Values())

	again, err := EmpLengthToNumeric(out)
	require.NoError(t, err)
	c2, _ := again.Column("emp_length")
	assert.Equal(t, col.Values(), c2.Values())

	bad, err := core.NewDataset(core.NewStringColumn("emp_length", []string{"n/a"}))
	require.NoError(t, err)
	_, err = EmpLengthToNumeric(bad)
	assert.True(t, core.IsInvalidInput(err))
}

func TestParseEmpLength(t *testing.T) {
	cases := map[string]float64{"< 1 year": 0, "1 year": 1, "3 years": 3, "10+ years": 10, " 7 years ": 7}
	for in, want := range cases {
		got, err := ParseEmpLength(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func vintageDataset(t *testing.T) *core.Dataset {
	t.Helper()
	ds, err := core.NewDataset(
		core.NewStringColumn("issue_d", []string{"Dec-2017", "Jan-2018", "Dec-2015", "Jan-2016", "Jun-2014", ""}),
		core.NewStringColumn("term", []string{" 36 months", " 36 months", " 60 months", " 60 months", "36 months", " 36 months"}),
	)
	require.NoError(t, err)
	ds, err = ObjectToDate(ds, "issue_d")
	require.NoError(t, err)
	return ds
}

func TestSelectVintages(t *testing.T) {
	ds := vintageDataset(t)

	out, err := SelectVintages(ds, DefaultVintageOptions())
	require.NoError(t, err)
	require.Equal(t, 2, out.Len())
	issued, _ := out.Column("issue_d")
	assert.Equal(t, []any{"Dec-2017", "Dec-2015"}, issued.Values())
	assert.Equal(t, 6, ds.Len())

	_, err = SelectVintages(ds, VintageOptions{DateColumn: "issue_d_date", TermColumn: "term"})
	assert.True(t, core.IsInvalidConfig(err))
}

func TestGoodBadDefinition(t *testing.T) {
	ds, err := core.NewDataset(core.NewStringColumn("loan_status", []string{
		"Fully Paid",
		"Charged Off",
		"Default",
		"Does not meet the credit policy. Status:Charged Off",
		"Late (31-120 days)",
		"Late (16-30 days)",
		"Current",
		"",
	}))
	require.NoError(t, err)

	out, err := GoodBadDefinition(ds, "loan_status", "good_bad")
	require.NoError(t, err)
	col, err := out.Column("good_bad")
	require.NoError(t, err)
	assert.Equal(t, core.TypeBinary, col.Type())
	assert.Equal(t, []any{1.0, 0.0, 0.0, 0.0, 0.0, 1.0, 1.0, 1.0}, col.Values())

	_, err = GoodBadDefinition(out, "loan_status", "good_bad")
	assert.True(t, core.IsColumnExists(err))
}

func TestFilter(t *testing.T) {
	ds := vintageDataset(t)
	ds, err := ds.With(core.NewFloatColumn("int_rate", core.TypeContinuous, []float64{7, 12, 15, 9, 22, 11}))
	require.NoError(t, err)

	out, err := Filter(ds, `row.term == " 60 months" && row.int_rate > 10`)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Len())

	out, err = Filter(ds, `row.issue_d_date != null && row.issue_d_date < timestamp("2016-01-01T00:00:00Z")`)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Len())

	_, err = Filter(ds, `row.term ==`)
	assert.True(t, core.IsInvalidConfig(err))

	_, err = Filter(ds, `row.int_rate`)
	assert.Error(t, err)
}
