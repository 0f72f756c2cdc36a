package config

import (
	"log/slog"
	"sync"

	"github.com/rushteam/scorekit/binning"
	"github.com/rushteam/scorekit/core"
)

// Runtime 是配置驱动构建 Node 时共享的运行时依赖，零值字段使用各组件的默认值。
type Runtime struct {
	Logger  *slog.Logger
	Monitor core.Monitor
	// Store 非空时 woe.encode 在其中持久化/复用 WoE 表，woe.apply 从中加载
	Store core.Store
	// TableTTL 是写入 Store 的 WoE 表默认过期秒数，节点配置 ttl 优先
	TableTTL int
	// Schemes 是共享的方案文件，按变量名查找时优先于内置贷款方案
	Schemes *binning.Config
	// WoE 提供 WoE 编码器的默认值（例如 *Settings）
	WoE core.WoEConfig
}

var (
	runtime   Runtime
	runtimeMu sync.RWMutex
)

// SetRuntime 设置之后构建的 Node 使用的运行时依赖。已构建的 Node 不受影响。
func SetRuntime(rt Runtime) {
	runtimeMu.Lock()
	defer runtimeMu.Unlock()
	runtime = rt
}

// CurrentRuntime 返回当前运行时依赖。
func CurrentRuntime() Runtime {
	runtimeMu.RLock()
	defer runtimeMu.RUnlock()
	return runtime
}
