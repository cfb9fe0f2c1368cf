package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/yyt520/ahooks-code-analysis/internal/eventstore"
	"github.com/yyt520/ahooks-code-analysis/internal/logfields"
	"github.com/yyt520/ahooks-code-analysis/internal/pages"
)

// CheckScheduler periodically checks the served manifest against a docs
// directory and publishes the report on the server.
type CheckScheduler struct {
	scheduler gocron.Scheduler
	server    *Server
	docsDir   string
}

// NewCheckScheduler creates a scheduler for srv. Call Start to begin.
func NewCheckScheduler(srv *Server, docsDir string) (*CheckScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}
	return &CheckScheduler{scheduler: s, server: srv, docsDir: docsDir}, nil
}

// Start schedules a check every interval, running the first one immediately.
func (c *CheckScheduler) Start(ctx context.Context, interval time.Duration) error {
	_, err := c.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(c.RunOnce, ctx),
		gocron.WithName("docs-check"),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create docs check job: %w", err)
	}
	slog.Info("Starting docs check scheduler", logfields.Path(c.docsDir), slog.Duration("interval", interval))
	c.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down, waiting for a running check to finish.
func (c *CheckScheduler) Stop() error {
	slog.Info("Stopping docs check scheduler")
	return c.scheduler.Shutdown()
}

// RunOnce checks the current manifest now. It is a no-op before the first manifest is loaded.
func (c *CheckScheduler) RunOnce(ctx context.Context) {
	cfg := c.server.Manifest()
	if cfg == nil {
		return
	}
	start := time.Now()
	report, err := pages.Check(ctx, cfg, c.docsDir)
	if err != nil {
		slog.Error("Docs check failed", logfields.Path(c.docsDir), logfields.Error(err))
		return
	}
	elapsed := time.Since(start)
	c.server.recorder.ObservePageCheck(elapsed, len(report.Missing()), len(report.Orphans))
	c.server.SetCheckReport(report)
	c.server.emit(eventstore.NewDocsChecked(report, elapsed))
	if report.HasErrors() {
		slog.Warn("Docs check found missing pages", slog.Int("missing", len(report.Missing())))
	}
}
