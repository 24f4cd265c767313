package service

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const pruneJobID = "prune-revisions"

// Pruner trims revision history on a cron schedule.
type Pruner struct {
	pages    *PageService
	keep     int
	schedule string
	guard    jobGuard
	cron     *cron.Cron
	log      *zap.SugaredLogger
}

func NewPruner(pages *PageService, schedule string, keep int) *Pruner {
	return &Pruner{pages: pages, keep: keep, schedule: schedule, log: zap.S()}
}

// Start schedules pruning. An empty schedule disables it.
func (p *Pruner) Start(ctx context.Context) error {
	if p.schedule == "" {
		return nil
	}
	c := cron.New()
	_, err := c.AddFunc(p.schedule, func() {
		if _, err := p.RunOnce(ctx); err != nil {
			p.log.Warnw("prune: run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", p.schedule, err)
	}
	c.Start()
	p.cron = c
	p.log.Infow("prune: scheduled", "schedule", p.schedule, "keep", p.keep)
	return nil
}

// RunOnce prunes immediately. A run already in progress, or a keep below
// one (unbounded history), makes it a no-op.
func (p *Pruner) RunOnce(ctx context.Context) (int, error) {
	if p.keep < 1 {
		return 0, nil
	}
	if !p.guard.TryLock(pruneJobID) {
		p.log.Debugw("prune: already running")
		return 0, nil
	}
	defer p.guard.Unlock(pruneJobID)

	n, err := p.pages.PruneAll(ctx, p.keep)
	if n > 0 {
		p.log.Infow("prune: revisions deleted", "count", n, "keep", p.keep)
	}
	return n, err
}

// Stop stops the schedule and waits for a running prune to finish.
func (p *Pruner) Stop(ctx context.Context) {
	if p.cron != nil {
		<-p.cron.Stop().Done()
		p.cron = nil
	}
	p.guard.WaitAll(ctx)
}
