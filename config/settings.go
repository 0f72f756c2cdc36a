package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"

	"github.com/rushteam/scorekit/binning"
	"github.com/rushteam/scorekit/core"
	"github.com/rushteam/scorekit/pipeline"
	"github.com/rushteam/scorekit/store"
)

// EnvPrefix 是环境变量前缀，例如 SCOREKIT_REDIS_ADDR。
const EnvPrefix = "SCOREKIT"

// Settings 是进程级设置，从环境变量加载。
// 同时实现 core.WoEConfig，作为 WoE 编码器的默认值来源。
type Settings struct {
	// PipelinePath 是流水线配置文件（.yaml/.yml/.json）
	PipelinePath string `envconfig:"PIPELINE"`
	// SchemesPath 是共享方案文件，节点按变量名引用
	SchemesPath string `envconfig:"SCHEMES"`

	RedisAddr string `envconfig:"REDIS_ADDR"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0" validate:"gte=0,lte=15"`
	// TableTTL 是 WoE 表在 Store 中的过期时间（秒），0 表示不过期
	TableTTL int `envconfig:"TABLE_TTL" default:"0" validate:"gte=0"`

	WoESuffix        string  `envconfig:"WOE_SUFFIX" default:"_woe" validate:"required"`
	WoESmoothing     float64 `envconfig:"WOE_SMOOTHING" default:"0.5" validate:"gt=0"`
	WoEUnseen        float64 `envconfig:"WOE_UNSEEN" default:"0"`
	WoEMaxConcurrent int     `envconfig:"WOE_MAX_CONCURRENT" default:"4" validate:"gte=0"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text" validate:"oneof=text json"`
}

var validate = validator.New()

// LoadSettings 从环境变量加载并校验设置。
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process(EnvPrefix, &s); err != nil {
		return nil, core.ErrInvalidConfig(core.ModuleConfig, "load env: %v", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate 校验设置。
func (s *Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return core.ErrInvalidConfig(core.ModuleConfig, "%v", err)
	}
	return nil
}

// Level 返回日志级别。
func (s *Settings) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger 按设置创建 slog.Logger。
func (s *Settings) NewLogger(w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: s.Level()}
	var handler slog.Handler
	if s.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler).With(slog.String("service", "scorekit"))
}

// OpenStore 配置了 RedisAddr 时连接 Redis，否则返回内存存储。
func (s *Settings) OpenStore(ctx context.Context) (core.Store, error) {
	if s.RedisAddr == "" {
		return store.NewMemoryStore(), nil
	}
	rs, err := store.NewRedisStore(ctx, s.RedisAddr, s.RedisDB)
	if err != nil {
		return nil, fmt.Errorf("open redis %s: %w", s.RedisAddr, err)
	}
	return rs, nil
}

// Runtime 按设置组装配置驱动所需的运行时依赖：日志、存储、方案文件与 WoE 默认值。
func (s *Settings) Runtime(ctx context.Context, w io.Writer) (Runtime, error) {
	rt := Runtime{Logger: s.NewLogger(w), TableTTL: s.TableTTL, WoE: s}
	if s.SchemesPath != "" {
		schemes, err := binning.LoadConfig(s.SchemesPath)
		if err != nil {
			return Runtime{}, fmt.Errorf("load schemes %s: %w", s.SchemesPath, err)
		}
		rt.Schemes = schemes
	}
	st, err := s.OpenStore(ctx)
	if err != nil {
		return Runtime{}, err
	}
	rt.Store = st
	return rt, nil
}

// LoadPipeline 读取 PipelinePath 并用当前 Runtime 构建流水线，调用前应先 SetRuntime。
func (s *Settings) LoadPipeline() (*pipeline.Pipeline, error) {
	if s.PipelinePath == "" {
		return nil, core.ErrInvalidConfig(core.ModuleConfig, "%s_PIPELINE is not set", EnvPrefix)
	}
	var (
		cfg *pipeline.Config
		err error
	)
	if strings.EqualFold(filepath.Ext(s.PipelinePath), ".json") {
		cfg, err = pipeline.LoadFromJSON(s.PipelinePath)
	} else {
		cfg, err = pipeline.LoadFromYAML(s.PipelinePath)
	}
	if err != nil {
		return nil, err
	}
	return BuildPipeline(cfg)
}

func (s *Settings) DefaultSuffix() string     { return s.WoESuffix }
func (s *Settings) DefaultSmoothing() float64 { return s.WoESmoothing }
func (s *Settings) DefaultUnseen() float64    { return s.WoEUnseen }
func (s *Settings) DefaultMaxConcurrent() int { return s.WoEMaxConcurrent }

var _ core.WoEConfig = (*Settings)(nil)
