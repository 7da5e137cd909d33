package app

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"newspaper-etl/internal/config"
	"newspaper-etl/internal/observability"
)

// Job is one scheduled run of the pipeline.
type Job func(ctx context.Context) error

// Schedule runs job according to scheduler.mode and blocks until ctx is done.
// In oneshot mode it runs once and returns the job's error.
func Schedule(ctx context.Context, cfg *config.Config, logger *observability.Logger, job Job) error {
	switch cfg.Scheduler.Mode {
	case "interval":
		return runInterval(ctx, cfg.GetSchedulerInterval(), logger, job)
	case "cron":
		return runCron(ctx, cfg.Scheduler.CronExpr, logger, job)
	default:
		return job(ctx)
	}
}

func runInterval(ctx context.Context, interval time.Duration, logger *observability.Logger, job Job) error {
	logger.Info("Scheduler started", "mode", "interval", "interval", interval.String())

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		runJob(ctx, logger, job)
		select {
		case <-ctx.Done():
			logger.Info("Scheduler stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func runCron(ctx context.Context, expr string, logger *observability.Logger, job Job) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	cl := cronLogger{logger: logger}
	c := cron.New(
		cron.WithParser(parser),
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	if _, err := c.AddFunc(expr, func() { runJob(ctx, logger, job) }); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}

	logger.Info("Scheduler started", "mode", "cron", "cron_expr", expr)
	c.Start()
	<-ctx.Done()

	// wait for a run in flight to finish its waves
	<-c.Stop().Done()
	logger.Info("Scheduler stopped")
	return nil
}

func runJob(ctx context.Context, logger *observability.Logger, job Job) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	if err := job(ctx); err != nil {
		logger.Error("Scheduled run failed", "error", err.Error(), "duration", time.Since(start).String())
		return
	}
	logger.Info("Scheduled run finished", "duration", time.Since(start).String())
}

// cronLogger adapts Logger to cron.Logger.
type cronLogger struct {
	logger *observability.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err.Error()}, keysAndValues...)...)
}
