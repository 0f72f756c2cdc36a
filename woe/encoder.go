package woe

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/rushteam/scorekit/core"
)

// Encoder 在训练集上为多个离散变量拟合 WoE 表。
//
// 字段为零值时从 Config 取默认值（默认 core.DefaultWoEConfig）。
// 拟合期间数据集只读，各变量并发拟合，并发数由 MaxConcurrent 限制。
type Encoder struct {
	Variables []string
	Target    string

	Suffix        string
	Policy        Policy
	Smoothing     float64
	Unseen        *float64
	MaxConcurrent int

	Config  core.WoEConfig
	Logger  *slog.Logger
	Monitor core.Monitor
}

func (e *Encoder) config() core.WoEConfig {
	if e.Config == nil {
		return &core.DefaultWoEConfig{}
	}
	return e.Config
}

func (e *Encoder) logger() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

func (e *Encoder) monitor() core.Monitor {
	if e.Monitor == nil {
		return core.NopMonitor{}
	}
	return e.Monitor
}

func (e *Encoder) fitOptions() FitOptions {
	cfg := e.config()
	opts := FitOptions{Policy: e.Policy, Alpha: e.Smoothing, Unseen: cfg.DefaultUnseen()}
	if opts.Policy == "" {
		opts.Policy = PolicyAdditive
	}
	if opts.Alpha <= 0 {
		opts.Alpha = cfg.DefaultSmoothing()
	}
	if e.Unseen != nil {
		opts.Unseen = *e.Unseen
	}
	return opts
}

func (e *Encoder) suffix() string {
	if e.Suffix == "" {
		return e.config().DefaultSuffix()
	}
	return e.Suffix
}

func (e *Encoder) validate(ds *core.Dataset) error {
	if e.Target == "" {
		return core.ErrInvalidConfig(core.ModuleWoE, "encoder without target")
	}
	if len(e.Variables) == 0 {
		return core.ErrInvalidConfig(core.ModuleWoE, "encoder without variables")
	}
	if _, err := ds.Column(e.Target); err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(e.Variables))
	for _, v := range e.Variables {
		if _, dup := seen[v]; dup {
			return core.ErrInvalidConfig(core.ModuleWoE, "variable %q listed twice", v)
		}
		seen[v] = struct{}{}
		if v == e.Target {
			return core.ErrInvalidConfig(core.ModuleWoE, "variable %q is the target", v)
		}
		if _, err := ds.Column(v); err != nil {
			return err
		}
	}
	return nil
}

// Fit 拟合全部变量，返回只做查找、不再拟合的 Model。
func (e *Encoder) Fit(ctx context.Context, ds *core.Dataset) (*Model, error) {
	if err := e.validate(ds); err != nil {
		return nil, err
	}
	tables, err := e.fit(ctx, ds, e.Variables)
	if err != nil {
		return nil, err
	}
	return e.model(tables), nil
}

func (e *Encoder) fit(ctx context.Context, ds *core.Dataset, variables []string) ([]*Table, error) {
	opts := e.fitOptions()
	tables := make([]*Table, len(variables))

	maxConcurrent := e.MaxConcurrent
	if maxConcurrent == 0 {
		maxConcurrent = e.config().DefaultMaxConcurrent()
	}

	eg, egCtx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, max(maxConcurrent, 1))
	for i, variable := range variables {
		i, variable := i, variable
		eg.Go(func() error {
			if maxConcurrent > 0 {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			if err := egCtx.Err(); err != nil {
				return err
			}
			t, err := FitTable(ds, variable, e.Target, opts)
			if err != nil {
				return fmt.Errorf("fit %s: %w", variable, err)
			}
			e.observe(egCtx, t)
			tables[i] = t
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}

func (e *Encoder) observe(ctx context.Context, t *Table) {
	log := e.logger()
	if t.Uninformative() {
		log.WarnContext(ctx, "woe undefined: fit set has a single outcome, all values set to 0",
			slog.String("variable", t.Variable),
			slog.String("target", t.Target),
			slog.Int("good", t.TotalGood),
			slog.Int("bad", t.TotalBad))
		return
	}
	degenerate := t.Degenerate()
	if len(degenerate) == 0 {
		return
	}
	m := e.monitor()
	for _, cat := range degenerate {
		m.RecordDegenerate(ctx, t.Variable, cat)
	}
	log.WarnContext(ctx, "woe smoothed for categories with a single outcome",
		slog.String("variable", t.Variable),
		slog.String("policy", string(t.Policy)),
		slog.Float64("alpha", t.Alpha),
		slog.Any("categories", degenerate))
}

func (e *Encoder) model(tables []*Table) *Model {
	return &Model{Target: e.Target, Suffix: e.suffix(), Tables: tables, Logger: e.Logger}
}

// FitOrLoad 先从 store 读取已拟合的表，只拟合缺失的变量并写回。
//
// 同一 (variable, target) 在训练集上拟合一次，之后对验证集/测试集复用同一张表。
func (e *Encoder) FitOrLoad(ctx context.Context, ds *core.Dataset, store *TableStore) (*Model, error) {
	if store == nil {
		return e.Fit(ctx, ds)
	}
	// 全部命中时数据集可以不带目标列（例如测试集）
	if e.Target == "" {
		return nil, core.ErrInvalidConfig(core.ModuleWoE, "encoder without target")
	}
	if len(e.Variables) == 0 {
		return nil, core.ErrInvalidConfig(core.ModuleWoE, "encoder without variables")
	}

	loaded, err := store.LoadAll(ctx, e.Target, e.Variables)
	if err != nil {
		return nil, err
	}
	opts := e.fitOptions()
	var missing []string
	for _, v := range e.Variables {
		t, ok := loaded[v]
		if !ok {
			missing = append(missing, v)
			continue
		}
		e.checkStored(ctx, t, opts)
	}

	if len(missing) > 0 {
		sub := *e
		sub.Variables = missing
		if err := sub.validate(ds); err != nil {
			return nil, err
		}
		fitted, err := e.fit(ctx, ds, missing)
		if err != nil {
			return nil, err
		}
		for _, t := range fitted {
			if err := store.Save(ctx, t); err != nil {
				return nil, err
			}
			loaded[t.Variable] = t
		}
	}
	e.logger().DebugContext(ctx, "woe tables ready",
		slog.String("target", e.Target),
		slog.Int("loaded", len(e.Variables)-len(missing)),
		slog.Int("fitted", len(missing)))

	tables := make([]*Table, len(e.Variables))
	for i, v := range e.Variables {
		tables[i] = loaded[v]
	}
	return e.model(tables), nil
}

// checkStored 在复用的表与当前拟合参数不一致时告警，查找仍使用已保存的表。
func (e *Encoder) checkStored(ctx context.Context, t *Table, opts FitOptions) {
	if !t.FittedWith(opts) {
		e.logger().WarnContext(ctx, "stored woe table was fitted with different options, keeping stored values",
			slog.String("variable", t.Variable),
			slog.String("target", t.Target),
			slog.String("stored_policy", string(t.Policy)),
			slog.Float64("stored_alpha", t.Alpha),
			slog.Float64("stored_unseen", t.Unseen),
			slog.String("policy", string(opts.Policy)),
			slog.Float64("alpha", opts.Alpha),
			slog.Float64("unseen", opts.Unseen))
	}
}

// LoadModel 从 store 加载 target 下各变量的表，任一缺失返回 NOT_FOUND。
func LoadModel(ctx context.Context, store *TableStore, target, suffix string, variables ...string) (*Model, error) {
	if store == nil {
		return nil, core.ErrInvalidConfig(core.ModuleWoE, "load model without store")
	}
	if target == "" || len(variables) == 0 {
		return nil, core.ErrInvalidConfig(core.ModuleWoE, "load model needs target and variables")
	}
	loaded, err := store.LoadAll(ctx, target, variables)
	if err != nil {
		return nil, err
	}
	tables := make([]*Table, len(variables))
	for i, v := range variables {
		t, ok := loaded[v]
		if !ok {
			return nil, core.NewDomainError(core.ModuleWoE, core.ErrorCodeNotFound,
				fmt.Sprintf("no woe table for %s under target %s", v, target))
		}
		tables[i] = t
	}
	return NewModel(target, suffix, tables...), nil
}

// Model 是拟合好的 WoE 表集合，只做查找。
type Model struct {
	Target string
	Suffix string
	Tables []*Table
	Logger *slog.Logger
}

// NewModel 由已有的表构造 Model（例如从 store 加载）。
func NewModel(target, suffix string, tables ...*Table) *Model {
	if suffix == "" {
		suffix = (&core.DefaultWoEConfig{}).DefaultSuffix()
	}
	return &Model{Target: target, Suffix: suffix, Tables: tables}
}

// Table 按变量名查找表。
func (m *Model) Table(variable string) (*Table, bool) {
	for _, t := range m.Tables {
		if t.Variable == variable {
			return t, true
		}
	}
	return nil, false
}

// Variables 返回模型覆盖的变量。
func (m *Model) Variables() []string {
	out := make([]string, len(m.Tables))
	for i, t := range m.Tables {
		out[i] = t.Variable
	}
	return out
}

// ColumnName 返回变量的 WoE 输出列名。
func (m *Model) ColumnName(variable string) string {
	return variable + m.Suffix
}

// Transform 为每个变量追加 WoE 列，源列保留。未见过的类别和缺失值取表的 Unseen 值。
func (m *Model) Transform(ctx context.Context, ds *core.Dataset) (*core.Dataset, error) {
	log := m.Logger
	if log == nil {
		log = slog.Default()
	}
	cur := ds
	for _, t := range m.Tables {
		next, unseen, err := t.Apply(cur, m.ColumnName(t.Variable))
		if err != nil {
			return nil, err
		}
		if unseen > 0 {
			log.DebugContext(ctx, "woe lookup fell back to unseen value",
				slog.String("variable", t.Variable),
				slog.Int("rows", unseen),
				slog.Float64("value", t.Unseen))
		}
		cur = next
	}
	return cur, nil
}
