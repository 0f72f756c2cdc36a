// Package monitor 提供 core.Monitor 的实现：内存统计与 Prometheus 指标。
package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/scorekit/core"
)

// VariableStats 是单个变量的数据质量统计。
type VariableStats struct {
	Variable string
	// BinCounts 是最近一次分箱各箱的命中行数
	BinCounts map[string]int
	// Unmapped 是累计未命中任何分箱的行数
	Unmapped int
	// Degenerate 是拟合 WoE 时只有一种结果的类别（已排序、去重）
	Degenerate     []string
	LastUpdateTime time.Time
}

// MemoryMonitor 是内存实现的 Monitor，用于测试与离线检查。
// 生产环境可以使用 PrometheusMonitor。
type MemoryMonitor struct {
	mu    sync.RWMutex
	stats map[string]*VariableStats
}

// NewMemoryMonitor 创建内存监控。
func NewMemoryMonitor() *MemoryMonitor {
	return &MemoryMonitor{stats: make(map[string]*VariableStats)}
}

func (m *MemoryMonitor) get(variable string) *VariableStats {
	s := m.stats[variable]
	if s == nil {
		s = &VariableStats{Variable: variable, BinCounts: make(map[string]int)}
		m.stats[variable] = s
	}
	s.LastUpdateTime = time.Now()
	return s
}

func (m *MemoryMonitor) RecordBinCount(_ context.Context, variable, bin string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(variable).BinCounts[bin] = count
}

func (m *MemoryMonitor) RecordUnmapped(_ context.Context, variable string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(variable).Unmapped += count
}

func (m *MemoryMonitor) RecordDegenerate(_ context.Context, variable, category string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.get(variable)
	i := sort.SearchStrings(s.Degenerate, category)
	if i < len(s.Degenerate) && s.Degenerate[i] == category {
		return
	}
	s.Degenerate = append(s.Degenerate, "")
	copy(s.Degenerate[i+1:], s.Degenerate[i:])
	s.Degenerate[i] = category
}

// Stats 返回变量统计的副本。
func (m *MemoryMonitor) Stats(variable string) (VariableStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.stats[variable]
	if !ok {
		return VariableStats{}, false
	}
	cp := *s
	cp.BinCounts = make(map[string]int, len(s.BinCounts))
	for k, v := range s.BinCounts {
		cp.BinCounts[k] = v
	}
	cp.Degenerate = append([]string(nil), s.Degenerate...)
	return cp, true
}

// Variables 返回已记录的变量（排序）。
func (m *MemoryMonitor) Variables() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.stats))
	for v := range m.stats {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Reset 清空统计。
func (m *MemoryMonitor) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stats = make(map[string]*VariableStats)
}

// Multi 把记录转发给多个 Monitor。
type Multi []core.Monitor

func (ms Multi) RecordBinCount(ctx context.Context, variable, bin string, count int) {
	for _, m := range ms {
		m.RecordBinCount(ctx, variable, bin, count)
	}
}

func (ms Multi) RecordUnmapped(ctx context.Context, variable string, count int) {
	for _, m := range ms {
		m.RecordUnmapped(ctx, variable, count)
	}
}

func (ms Multi) RecordDegenerate(ctx context.Context, variable, category string) {
	for _, m := range ms {
		m.RecordDegenerate(ctx, variable, category)
	}
}

var (
	_ core.Monitor = (*MemoryMonitor)(nil)
	_ core.Monitor = Multi(nil)
)
