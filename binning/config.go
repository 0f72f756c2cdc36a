package binning

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rushteam/scorekit/core"
)

// Config 是分箱/粗分类方案的声明式配置（YAML）。
//
//	continuous:
//	  - variable: int_rate
//	    bins:
//	      - {label: "<9.548", kind: interval, max: 9.548}
//	      - {label: "9.548-12.025", kind: interval, min: 9.548, min_open: true, max: 12.025}
//	      - {label: ">20.281", kind: interval, min: 20.281, min_open: true}
//	  - variable: mths_since_last_delinq
//	    bins:
//	      - {label: Missing, kind: missing}
//	      - {label: "0-3", kind: expr, expr: "!missing && value <= 3"}
//	discrete:
//	  - variable: purpose
//	    dummy_sep: ":"
//	    groups:
//	      - {label: wedding_car, members: [wedding, car]}
type Config struct {
	Continuous []SchemeConfig `yaml:"continuous" json:"continuous" validate:"dive"`
	Discrete   []MergeConfig  `yaml:"discrete" json:"discrete" validate:"dive"`
}

// SchemeConfig 是单个连续变量的方案配置。
type SchemeConfig struct {
	Variable string      `yaml:"variable" json:"variable" validate:"required"`
	Bins     []BinConfig `yaml:"bins" json:"bins" validate:"required,min=1,dive"`
	Note     string      `yaml:"note" json:"note"`
}

// BinConfig 是单个分箱配置。区间默认两端闭合，min_open/max_open 表示开区间。
type BinConfig struct {
	Label   string   `yaml:"label" json:"label" validate:"required"`
	Kind    string   `yaml:"kind" json:"kind" validate:"required,oneof=interval range values missing expr"`
	Min     *float64 `yaml:"min" json:"min"`
	Max     *float64 `yaml:"max" json:"max"`
	MinOpen bool     `yaml:"min_open" json:"min_open"`
	MaxOpen bool     `yaml:"max_open" json:"max_open"`
	Start   int      `yaml:"start" json:"start"`
	Stop    int      `yaml:"stop" json:"stop"`
	ToMax   bool     `yaml:"to_max" json:"to_max"`
	Values  []string `yaml:"values" json:"values" validate:"required_if=Kind values"`
	Expr    string   `yaml:"expr" json:"expr" validate:"required_if=Kind expr"`
}

// MergeConfig 是单个离散变量的分组配置。
type MergeConfig struct {
	Variable string        `yaml:"variable" json:"variable" validate:"required"`
	DummySep string        `yaml:"dummy_sep" json:"dummy_sep"`
	Groups   []GroupConfig `yaml:"groups" json:"groups" validate:"required,min=1,dive"`
}

// GroupConfig 是单个分组配置。
type GroupConfig struct {
	Label   string   `yaml:"label" json:"label"`
	Members []string `yaml:"members" json:"members" validate:"required,min=1,dive,required"`
}

var validate = validator.New()

// LoadConfig 从 YAML 文件加载方案配置。
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig 解析并校验 YAML 方案配置。
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 做结构校验（validator 标签）。
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return core.ErrInvalidConfig(core.ModuleBinning, "%v", err)
	}
	return nil
}

// Schemes 把配置构建为分箱方案。
func (c *Config) Schemes() ([]Scheme, error) {
	out := make([]Scheme, 0, len(c.Continuous))
	for _, sc := range c.Continuous {
		s, err := sc.Build()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Specs 把配置构建为粗分类方案。
func (c *Config) Specs() ([]MergeSpec, error) {
	out := make([]MergeSpec, 0, len(c.Discrete))
	for _, mc := range c.Discrete {
		spec := mc.Build()
		if err := spec.Validate(); err != nil {
			return nil, err
		}
		out = append(out, spec)
	}
	return out, nil
}

// SchemeFor 查找 variable 的分箱方案，配置中没有时返回 false。
func (c *Config) SchemeFor(variable string) (Scheme, bool, error) {
	if c == nil {
		return Scheme{}, false, nil
	}
	for _, sc := range c.Continuous {
		if sc.Variable != variable {
			continue
		}
		s, err := sc.Build()
		if err != nil {
			return Scheme{}, false, err
		}
		return s, true, nil
	}
	return Scheme{}, false, nil
}

// SpecFor 查找 variable 的粗分类方案，配置中没有时返回 false。
func (c *Config) SpecFor(variable string) (MergeSpec, bool, error) {
	if c == nil {
		return MergeSpec{}, false, nil
	}
	for _, mc := range c.Discrete {
		if mc.Variable != variable {
			continue
		}
		spec := mc.Build()
		if err := spec.Validate(); err != nil {
			return MergeSpec{}, false, err
		}
		return spec, true, nil
	}
	return MergeSpec{}, false, nil
}

// Build 构建单个分箱方案。
func (sc SchemeConfig) Build() (Scheme, error) {
	if err := validate.Struct(sc); err != nil {
		return Scheme{}, core.ErrInvalidConfig(core.ModuleBinning, "%v", err)
	}
	s := Scheme{Variable: sc.Variable, Note: sc.Note, Bins: make([]Bin, 0, len(sc.Bins))}
	for _, bc := range sc.Bins {
		b, err := bc.Build()
		if err != nil {
			return Scheme{}, fmt.Errorf("%s: %w", sc.Variable, err)
		}
		s.Bins = append(s.Bins, b)
	}
	if err := s.Validate(); err != nil {
		return Scheme{}, err
	}
	return s, nil
}

// Build 构建单个分箱。
func (bc BinConfig) Build() (Bin, error) {
	switch bc.Kind {
	case "interval":
		if bc.Min == nil && bc.Max == nil {
			return nil, core.ErrInvalidConfig(core.ModuleBinning, "bin %q: interval needs min or max", bc.Label)
		}
		if bc.Min != nil && bc.Max != nil && *bc.Min > *bc.Max {
			return nil, core.ErrInvalidConfig(core.ModuleBinning, "bin %q: min > max", bc.Label)
		}
		return Interval{
			Name:        bc.Label,
			Lower:       bc.Min,
			Upper:       bc.Max,
			LowerClosed: bc.Min != nil && !bc.MinOpen,
			UpperClosed: bc.Max != nil && !bc.MaxOpen,
		}, nil
	case "range":
		if !bc.ToMax && bc.Stop <= bc.Start {
			return nil, core.ErrInvalidConfig(core.ModuleBinning, "bin %q: stop must be greater than start", bc.Label)
		}
		return IntRange{Name: bc.Label, Start: bc.Start, Stop: bc.Stop, ToMax: bc.ToMax}, nil
	case "values":
		return ValueSet{Name: bc.Label, Values: bc.Values}, nil
	case "missing":
		return Missing{Name: bc.Label}, nil
	case "expr":
		return NewExpr(bc.Label, bc.Expr)
	default:
		return nil, core.ErrInvalidConfig(core.ModuleBinning, "bin %q: unknown kind %q", bc.Label, bc.Kind)
	}
}

// Build 构建粗分类方案。
func (mc MergeConfig) Build() MergeSpec {
	spec := MergeSpec{Variable: mc.Variable, DummySep: mc.DummySep, Groups: make([]Group, len(mc.Groups))}
	for i, g := range mc.Groups {
		spec.Groups[i] = Group{Label: g.Label, Members: g.Members}
	}
	return spec
}
