package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rushteam/scorekit/core"
)

// Pipeline 把数据准备逻辑拆成可组合的 Node 链，按顺序执行。
type Pipeline struct {
	Name   string
	Nodes  []Node
	Logger *slog.Logger
}

// Run 依次执行每个 Node，任一失败立即返回（错误带上 Node 名称）。
func (p *Pipeline) Run(ctx context.Context, ds *core.Dataset) (*core.Dataset, error) {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	cur := ds
	for i, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		next, err := node.Process(ctx, cur)
		if err != nil {
			return nil, fmt.Errorf("node %d %s: %w", i, node.Name(), err)
		}
		log.DebugContext(ctx, "node done",
			slog.String("pipeline", p.Name),
			slog.String("node", node.Name()),
			slog.String("kind", string(node.Kind())),
			slog.Int("rows", next.Len()),
			slog.Int("columns", next.Width()),
			slog.Duration("elapsed", time.Since(start)))
		cur = next
	}
	return cur, nil
}
