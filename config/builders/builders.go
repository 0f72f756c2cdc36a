package builders

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/rushteam/scorekit/binning"
	"github.com/rushteam/scorekit/config"
	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
	"github.com/rushteam/scorekit/pkg/conv"
	"github.com/rushteam/scorekit/prep"
	"github.com/rushteam/scorekit/woe"
)

func init() {
	config.Register("prep.to_date", BuildDateNode)
	config.Register("prep.drop_columns", BuildDropNode)
	config.Register("prep.emp_length", BuildEmpLengthNode)
	config.Register("prep.vintage", BuildVintageNode)
	config.Register("prep.good_bad", BuildGoodBadNode)
	config.Register("prep.filter", BuildFilterNode)
	config.Register("bin.continuous", BuildBinNode)
	config.Register("bin.onehot", BuildOneHotNode)
	config.Register("bin.merge", BuildMergeNode)
	config.Register("bin.classify", BuildClassifyNode)
	config.Register("woe.encode", BuildEncodeNode)
	config.Register("woe.apply", BuildApplyNode)
}

func invalid(format string, args ...any) error {
	return core.ErrInvalidConfig(core.ModuleConfig, format, args...)
}

// decode 通过 YAML 往返把 map 配置解码为结构体。
func decode(v any, out any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return invalid("encode: %v", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return invalid("decode: %v", err)
	}
	return nil
}

func BuildDateNode(cfg map[string]any) (pipeline.Node, error) {
	cols := conv.ConfigGetStrings(cfg, "columns")
	if len(cols) == 0 {
		return nil, invalid("prep.to_date: columns is required")
	}
	return &prep.DateNode{Columns: cols}, nil
}

func BuildDropNode(cfg map[string]any) (pipeline.Node, error) {
	spec := prep.DropSpec{
		Substrings: conv.ConfigGetStrings(cfg, "substrings"),
		Names:      conv.ConfigGetStrings(cfg, "names"),
	}
	if len(spec.Substrings) == 0 && len(spec.Names) == 0 {
		spec = prep.DefaultDropSpec()
	}
	return &prep.DropNode{Spec: spec}, nil
}

func BuildEmpLengthNode(map[string]any) (pipeline.Node, error) {
	return &prep.EmpLengthNode{}, nil
}

func BuildVintageNode(cfg map[string]any) (pipeline.Node, error) {
	opts := prep.DefaultVintageOptions()
	opts.DateColumn = conv.ConfigGet(cfg, "date_column", opts.DateColumn)
	opts.TermColumn = conv.ConfigGet(cfg, "term_column", opts.TermColumn)
	if raw, ok := cfg["rules"]; ok {
		var rules []struct {
			Term   string `yaml:"term"`
			Before int    `yaml:"before"`
		}
		if err := decode(raw, &rules); err != nil {
			return nil, fmt.Errorf("prep.vintage rules: %w", err)
		}
		opts.Rules = make([]prep.VintageRule, len(rules))
		for i, r := range rules {
			opts.Rules[i] = prep.VintageRule{Term: r.Term, Before: r.Before}
		}
	}
	if len(opts.Rules) == 0 {
		return nil, invalid("prep.vintage: rules is empty")
	}
	return &prep.VintageNode{Options: opts}, nil
}

func BuildGoodBadNode(cfg map[string]any) (pipeline.Node, error) {
	return &prep.GoodBadNode{
		StatusColumn: conv.ConfigGet(cfg, "status_column", "loan_status"),
		TargetColumn: conv.ConfigGet(cfg, "target_column", "good_bad"),
	}, nil
}

func BuildFilterNode(cfg map[string]any) (pipeline.Node, error) {
	expr := conv.ConfigGet(cfg, "expr", "")
	if expr == "" {
		return nil, invalid("prep.filter: expr is required")
	}
	return &prep.FilterNode{Expr: expr}, nil
}

// schemeConfig 读取 variables（内置方案）、schemes（内联方案）与 file（方案文件）。
func schemeConfig(cfg map[string]any) (*binning.Config, error) {
	out := &binning.Config{}
	if path := conv.ConfigGet(cfg, "file", ""); path != "" {
		fromFile, err := binning.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		out = fromFile
	}
	if raw, ok := cfg["schemes"]; ok {
		var inline binning.Config
		if err := decode(map[string]any{"continuous": raw}, &inline); err != nil {
			return nil, err
		}
		out.Continuous = append(out.Continuous, inline.Continuous...)
	}
	if raw, ok := cfg["groups"]; ok {
		var inline binning.Config
		if err := decode(map[string]any{"discrete": raw}, &inline); err != nil {
			return nil, err
		}
		out.Discrete = append(out.Discrete, inline.Discrete...)
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func BuildBinNode(cfg map[string]any) (pipeline.Node, error) {
	sc, err := schemeConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("bin.continuous: %w", err)
	}
	rt := config.CurrentRuntime()
	var schemes []binning.Scheme
	for _, v := range conv.ConfigGetStrings(cfg, "variables") {
		s, ok, err := rt.Schemes.SchemeFor(v)
		if err != nil {
			return nil, fmt.Errorf("bin.continuous: %w", err)
		}
		if !ok {
			if s, ok = binning.LoanScheme(v); !ok {
				return nil, invalid("bin.continuous: no scheme for %q", v)
			}
		}
		schemes = append(schemes, s)
	}
	built, err := sc.Schemes()
	if err != nil {
		return nil, fmt.Errorf("bin.continuous: %w", err)
	}
	schemes = append(schemes, built...)
	if len(schemes) == 0 {
		return nil, invalid("bin.continuous: no schemes")
	}

	b := binning.NewBinner(rt.Logger, rt.Monitor)
	b.KeepSource = conv.ConfigGet(cfg, "keep_source", false)
	return &binning.BinNode{Binner: b, Schemes: schemes}, nil
}

func BuildOneHotNode(cfg map[string]any) (pipeline.Node, error) {
	vars := conv.ConfigGetStrings(cfg, "variables")
	if len(vars) == 0 {
		return nil, invalid("bin.onehot: variables is required")
	}
	return &binning.OneHotNode{Variables: vars, Sep: conv.ConfigGet(cfg, "sep", binning.DefaultDummySep)}, nil
}

func mergeSpecs(nodeType string, cfg map[string]any) ([]binning.MergeSpec, error) {
	sc, err := schemeConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", nodeType, err)
	}
	shared := config.CurrentRuntime().Schemes
	var specs []binning.MergeSpec
	for _, v := range conv.ConfigGetStrings(cfg, "variables") {
		s, ok, err := shared.SpecFor(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", nodeType, err)
		}
		if !ok {
			if s, ok = binning.LoanSpec(v); !ok {
				return nil, invalid("%s: no grouping for %q", nodeType, v)
			}
		}
		specs = append(specs, s)
	}
	built, err := sc.Specs()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", nodeType, err)
	}
	specs = append(specs, built...)
	if len(specs) == 0 {
		return nil, invalid("%s: no groupings", nodeType)
	}
	return specs, nil
}

func BuildMergeNode(cfg map[string]any) (pipeline.Node, error) {
	specs, err := mergeSpecs("bin.merge", cfg)
	if err != nil {
		return nil, err
	}
	return &binning.MergeNode{Merger: &binning.Merger{Logger: config.CurrentRuntime().Logger}, Specs: specs}, nil
}

func BuildClassifyNode(cfg map[string]any) (pipeline.Node, error) {
	specs, err := mergeSpecs("bin.classify", cfg)
	if err != nil {
		return nil, err
	}
	rt := config.CurrentRuntime()
	return &binning.ClassifyNode{
		Classifier: &binning.Classifier{Logger: rt.Logger, Monitor: rt.Monitor},
		Specs:      specs,
	}, nil
}

func BuildEncodeNode(cfg map[string]any) (pipeline.Node, error) {
	vars := conv.ConfigGetStrings(cfg, "variables")
	if len(vars) == 0 {
		return nil, invalid("woe.encode: variables is required")
	}
	target := conv.ConfigGet(cfg, "target", "good_bad")

	rt := config.CurrentRuntime()
	enc := &woe.Encoder{
		Variables:     vars,
		Target:        target,
		Suffix:        conv.ConfigGet(cfg, "suffix", ""),
		Policy:        woe.Policy(conv.ConfigGet(cfg, "policy", string(woe.PolicyAdditive))),
		Smoothing:     conv.ConfigGetFloat64(cfg, "smoothing", 0),
		MaxConcurrent: int(conv.ConfigGetInt64(cfg, "max_concurrent", 0)),
		Config:        rt.WoE,
		Logger:        rt.Logger,
		Monitor:       rt.Monitor,
	}
	if enc.Policy != woe.PolicyAdditive && enc.Policy != woe.PolicyNeutral {
		return nil, invalid("woe.encode: unknown policy %q", enc.Policy)
	}
	if _, ok := cfg["unseen"]; ok {
		unseen := conv.ConfigGetFloat64(cfg, "unseen", 0)
		enc.Unseen = &unseen
	}

	node := &woe.EncodeNode{Encoder: enc}
	if rt.Store != nil && conv.ConfigGet(cfg, "persist", true) {
		ts := woe.NewTableStore(rt.Store)
		ts.Prefix = conv.ConfigGet(cfg, "key_prefix", woe.DefaultKeyPrefix)
		ts.TTL = int(conv.ConfigGetInt64(cfg, "ttl", int64(rt.TableTTL)))
		node.Store = ts
	}
	return node, nil
}

// BuildApplyNode 构建只查表的 woe.apply，表需已由 woe.encode 写入 Runtime.Store。
func BuildApplyNode(cfg map[string]any) (pipeline.Node, error) {
	vars := conv.ConfigGetStrings(cfg, "variables")
	if len(vars) == 0 {
		return nil, invalid("woe.apply: variables is required")
	}
	rt := config.CurrentRuntime()
	if rt.Store == nil {
		return nil, invalid("woe.apply: runtime has no store")
	}
	suffix := conv.ConfigGet(cfg, "suffix", "")
	if suffix == "" && rt.WoE != nil {
		suffix = rt.WoE.DefaultSuffix()
	}
	ts := woe.NewTableStore(rt.Store)
	ts.Prefix = conv.ConfigGet(cfg, "key_prefix", woe.DefaultKeyPrefix)
	return &woe.ApplyNode{
		Store:     ts,
		Target:    conv.ConfigGet(cfg, "target", "good_bad"),
		Variables: vars,
		Suffix:    suffix,
	}, nil
}
