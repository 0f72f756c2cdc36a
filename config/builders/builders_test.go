package builders

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/scorekit/config"
	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
	"github.com/rushteam/scorekit/store"
	"github.com/rushteam/scorekit/woe"
)

const loanPipeline = `
pipeline:
  name: loan_pd
  nodes:
    - type: prep.drop_columns
    - type: prep.to_date
      config:
        columns: [issue_d]
    - type: prep.emp_length
    - type: prep.vintage
    - type: prep.good_bad
    - type: prep.filter
      config:
        expr: 'row.int_rate > 0'
    - type: bin.continuous
      config:
        variables: [int_rate, emp_length]
    - type: bin.classify
      config:
        variables: [home_ownership]
    - type: woe.encode
      config:
        variables: [grade]
        target: good_bad
`

func loanDataset(t *testing.T) *core.Dataset {
	t.Helper()
	ds, err := core.NewDataset(
		core.NewFloatColumn("id", core.TypeContinuous, []float64{1, 2, 3, 4, 5, 6}),
		core.NewFloatColumn("member_id", core.TypeContinuous, []float64{1, 2, 3, 4, 5, 6}),
		core.NewStringColumn("url", []string{"u", "u", "u", "u", "u", "u"}),
		core.NewStringColumn("sec_app_earliest_cr_line", []string{"", "", "", "", "", ""}),
		core.NewStringColumn("issue_d", []string{"Dec-2015", "Mar-2016", "Jan-2018", "Jul-2014", "Feb-2017", "May-2013"}),
		core.NewStringColumn("term", []string{" 36 months", " 36 months", " 36 months", " 60 months", " 36 months", " 60 months"}),
		core.NewStringColumn("loan_status", []string{"Fully Paid", "Charged Off", "Current", "Default", "Fully Paid", "Fully Paid"}),
		core.NewFloatColumn("int_rate", core.TypeContinuous, []float64{7.5, 13.2, 9.1, 21.0, 10.4, 16.0}),
		core.NewStringColumn("emp_length", []string{"< 1 year", "3 years", "10+ years", "", "1 year", "7 years"}),
		core.NewStringColumn("home_ownership", []string{"RENT", "OWN", "MORTGAGE", "OTHER", "RENT", "MORTGAGE"}),
		core.NewStringColumn("grade", []string{"A", "B", "A", "B", "A", "B"}),
	)
	require.NoError(t, err)
	return ds
}

func TestLoanPipeline(t *testing.T) {
	ms := store.NewMemoryStore()
	defer ms.Close()
	config.SetRuntime(config.Runtime{Store: ms})
	defer config.SetRuntime(config.Runtime{})

	cfg, err := pipeline.ParseYAML([]byte(loanPipeline))
	require.NoError(t, err)
	p, err := config.BuildPipeline(cfg)
	require.NoError(t, err)
	require.Len(t, p.Nodes, 9)
	assert.Equal(t, "loan_pd", p.Name)

	train := loanDataset(t)
	out, err := p.Run(context.Background(), train)
	require.NoError(t, err)

	// Jan-2018 的 36 期被剔除
	assert.Equal(t, 5, out.Len())
	for _, gone := range []string{"id", "member_id", "url", "sec_app_earliest_cr_line", "int_rate", "emp_length", "home_ownership"} {
		assert.False(t, out.HasColumn(gone), gone)
	}
	for _, want := range []string{"issue_d_date", "good_bad", "int_rate:<9.548", "emp_length:0", "emp_length:10",
		"home_ownership:OTHER_RENT", "home_ownership:NONE_ANY_OWN", "home_ownership_MORTGAGE", "grade_woe"} {
		assert.True(t, out.HasColumn(want), want)
	}

	target, err := out.Column("good_bad")
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, 0.0, 0.0, 1.0, 1.0}, target.Values())

	ts := woe.NewTableStore(ms)
	table, err := ts.Load(context.Background(), "good_bad", "grade")
	require.NoError(t, err)
	assert.Equal(t, 3, table.TotalGood)
	assert.Equal(t, 2, table.TotalBad)

	// 再次运行复用已保存的表
	again, err := p.Run(context.Background(), train)
	require.NoError(t, err)
	a, _ := out.Column("grade_woe")
	b, _ := again.Column("grade_woe")
	assert.Equal(t, a.Values(), b.Values())
	assert.Equal(t, 11, train.Width())
}

func TestBuilders_Registered(t *testing.T) {
	types := config.SupportedTypes()
	for _, want := range []string{"prep.to_date", "prep.drop_columns", "prep.emp_length", "prep.vintage",
		"prep.good_bad", "prep.filter", "bin.continuous", "bin.onehot", "bin.merge", "bin.classify", "woe.encode", "woe.apply"} {
		assert.Contains(t, types, want)
	}
}

func TestBuilders_InlineSchemesAndGroups(t *testing.T) {
	node, err := BuildBinNode(map[string]any{
		"schemes": []any{
			map[string]any{
				"variable": "x",
				"bins": []any{
					map[string]any{"label": "low", "kind": "interval", "max": 5},
					map[string]any{"label": "high", "kind": "interval", "min": 5, "min_open": true},
				},
			},
		},
	})
	require.NoError(t, err)

	ds, err := core.NewDataset(core.NewFloatColumn("x", core.TypeContinuous, []float64{1, 5, 9}))
	require.NoError(t, err)
	out, err := node.Process(context.Background(), ds)
	require.NoError(t, err)
	assert.Equal(t, []string{"x:low", "x:high"}, out.Names())

	merge, err := BuildMergeNode(map[string]any{
		"groups": []any{
			map[string]any{"variable": "c", "groups": []any{map[string]any{"members": []any{"a", "b"}}}},
		},
	})
	require.NoError(t, err)
	onehot, err := BuildOneHotNode(map[string]any{"variables": []any{"c"}})
	require.NoError(t, err)

	cds, err := core.NewDataset(core.NewStringColumn("c", []string{"a", "b", "z"}))
	require.NoError(t, err)
	cds, err = onehot.Process(context.Background(), cds)
	require.NoError(t, err)
	cds, err = merge.Process(context.Background(), cds)
	require.NoError(t, err)
	assert.Equal(t, []string{"c_z", "c:a_b"}, cds.Names())
}

func TestBuilders_Errors(t *testing.T) {
	cases := []struct {
		name  string
		build config.NodeBuilder
		cfg   map[string]any
	}{
		{"to_date without columns", BuildDateNode, map[string]any{}},
		{"filter without expr", BuildFilterNode, map[string]any{}},
		{"unknown scheme", BuildBinNode, map[string]any{"variables": []any{"nope"}}},
		{"no schemes", BuildBinNode, map[string]any{}},
		{"unknown grouping", BuildClassifyNode, map[string]any{"variables": []any{"nope"}}},
		{"overlapping groups", BuildMergeNode, map[string]any{"groups": []any{
			map[string]any{"variable": "c", "groups": []any{
				map[string]any{"members": []any{"a", "b"}},
				map[string]any{"members": []any{"b"}},
			}},
		}}},
		{"woe without variables", BuildEncodeNode, map[string]any{}},
		{"woe bad policy", BuildEncodeNode, map[string]any{"variables": []any{"g"}, "policy": "median"}},
		{"woe.apply without variables", BuildApplyNode, map[string]any{}},
		{"woe.apply without store", BuildApplyNode, map[string]any{"variables": []any{"g"}}},
		{"onehot without variables", BuildOneHotNode, map[string]any{}},
		{"vintage empty rules", BuildVintageNode, map[string]any{"rules": []any{}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.build(tc.cfg)
			require.Error(t, err)
			assert.True(t, core.IsInvalidConfig(err), err.Error())
		})
	}
}

const encodeOnly = `
pipeline:
  name: woe_only
  nodes:
    - type: woe.encode
      config:
        variables: [grade]
`

func gradeDataset(t *testing.T, grades []string, target []float64) *core.Dataset {
	t.Helper()
	ds, err := core.NewDataset(
		core.NewStringColumn("grade", grades),
		core.NewFloatColumn("good_bad", core.TypeBinary, target),
	)
	require.NoError(t, err)
	return ds
}

func TestEncodePipeline_WithoutStoreKeepsTrainingTable(t *testing.T) {
	config.SetRuntime(config.Runtime{})

	cfg, err := pipeline.ParseYAML([]byte(encodeOnly))
	require.NoError(t, err)
	p, err := config.BuildPipeline(cfg)
	require.NoError(t, err)

	ctx := context.Background()
	train := gradeDataset(t, []string{"A", "A", "B", "B"}, []float64{1, 0, 1, 0})
	out, err := p.Run(ctx, train)
	require.NoError(t, err)
	col, _ := out.Column("grade_woe")
	trained, _ := col.Float(0)
	assert.InDelta(t, 0.0, trained, 1e-12)

	validation := gradeDataset(t, []string{"A", "A", "B"}, []float64{1, 1, 0})
	out, err = p.Run(ctx, validation)
	require.NoError(t, err)
	col, _ = out.Column("grade_woe")
	for i := 0; i < col.Len(); i++ {
		v, _ := col.Float(i)
		assert.InDelta(t, trained, v, 1e-12, "row %d", i)
	}
}

const sharedSchemes = `
continuous:
  - variable: x
    bins:
      - {label: low, kind: interval, max: 5}
      - {label: high, kind: interval, min: 5, min_open: true}
discrete:
  - variable: c
    groups:
      - {members: [a, b]}
`

const settingsPipeline = `
pipeline:
  name: from_env
  nodes:
    - type: bin.continuous
      config:
        variables: [x]
    - type: bin.classify
      config:
        variables: [c]
    - type: woe.encode
      config:
        variables: [grade]
`

const applyPipeline = `
pipeline:
  name: score
  nodes:
    - type: woe.apply
      config:
        variables: [grade]
`

func TestSettingsDrivenPipeline(t *testing.T) {
	dir := t.TempDir()
	schemesPath := filepath.Join(dir, "schemes.yaml")
	pipelinePath := filepath.Join(dir, "pipeline.yaml")
	require.NoError(t, os.WriteFile(schemesPath, []byte(sharedSchemes), 0o600))
	require.NoError(t, os.WriteFile(pipelinePath, []byte(settingsPipeline), 0o600))
	t.Setenv("SCOREKIT_SCHEMES", schemesPath)
	t.Setenv("SCOREKIT_PIPELINE", pipelinePath)
	t.Setenv("SCOREKIT_TABLE_TTL", "60")

	s, err := config.LoadSettings()
	require.NoError(t, err)
	ctx := context.Background()
	var logs bytes.Buffer
	rt, err := s.Runtime(ctx, &logs)
	require.NoError(t, err)
	defer rt.Store.Close()
	config.SetRuntime(rt)
	defer config.SetRuntime(config.Runtime{})

	p, err := s.LoadPipeline()
	require.NoError(t, err)
	assert.Equal(t, "from_env", p.Name)
	assert.Same(t, rt.Logger, p.Logger)
	enc, ok := p.Nodes[2].(*woe.EncodeNode)
	require.True(t, ok)
	assert.Equal(t, 60, enc.Store.TTL)

	train, err := core.NewDataset(
		core.NewFloatColumn("x", core.TypeContinuous, []float64{1, 9, 3, 7}),
		core.NewStringColumn("c", []string{"a", "b", "z", "a"}),
		core.NewStringColumn("grade", []string{"A", "A", "B", "B"}),
		core.NewFloatColumn("good_bad", core.TypeBinary, []float64{1, 1, 1, 0}),
	)
	require.NoError(t, err)
	out, err := p.Run(ctx, train)
	require.NoError(t, err)
	for _, want := range []string{"x:low", "x:high", "c:a_b", "grade_woe"} {
		assert.True(t, out.HasColumn(want), want)
	}

	cfg, err := pipeline.ParseYAML([]byte(applyPipeline))
	require.NoError(t, err)
	scoring, err := config.BuildPipeline(cfg)
	require.NoError(t, err)

	test, err := core.NewDataset(core.NewStringColumn("grade", []string{"B", "A"}))
	require.NoError(t, err)
	scored, err := scoring.Run(ctx, test)
	require.NoError(t, err)

	trained, _ := out.Column("grade_woe")
	applied, _ := scored.Column("grade_woe")
	b, _ := trained.Float(2)
	a, _ := trained.Float(0)
	gotB, _ := applied.Float(0)
	gotA, _ := applied.Float(1)
	assert.Equal(t, b, gotB)
	assert.Equal(t, a, gotA)
}

func TestSettings_LoadPipelineRequiresPath(t *testing.T) {
	s, err := config.LoadSettings()
	require.NoError(t, err)
	_, err = s.LoadPipeline()
	assert.True(t, core.IsInvalidConfig(err))
}
