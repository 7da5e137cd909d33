package app

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleOneshotRunsOnce(t *testing.T) {
	cfg := testConfig(nil, 0)
	boom := errors.New("boom")

	calls := 0
	err := Schedule(context.Background(), cfg, discardLogger(), func(context.Context) error {
		calls++
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestScheduleIntervalStopsOnCancel(t *testing.T) {
	cfg := testConfig(nil, 0)
	cfg.Scheduler.Mode = "interval"
	cfg.Scheduler.IntervalS = 3600

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Schedule(ctx, cfg, discardLogger(), func(context.Context) error {
		calls++
		cancel()
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestScheduleCronRejectsBadExpression(t *testing.T) {
	cfg := testConfig(nil, 0)
	cfg.Scheduler.Mode = "cron"
	cfg.Scheduler.CronExpr = "not a cron"

	err := Schedule(context.Background(), cfg, discardLogger(), func(context.Context) error { return nil })
	assert.Error(t, err)
}

func TestScheduleCronStopsOnCancel(t *testing.T) {
	cfg := testConfig(nil, 0)
	cfg.Scheduler.Mode = "cron"
	cfg.Scheduler.CronExpr = "0 6 * * *"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Schedule(ctx, cfg, discardLogger(), func(context.Context) error { return nil })
	assert.NoError(t, err)
}
