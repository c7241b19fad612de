package nudge

import (
	"context"
	"fmt"
	"time"

	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/brk3/habitkeeper/pkg/habit"
	"github.com/robfig/cron/v3"
)

// dailySpec turns HH:MM into a seconds-resolution cron spec.
func dailySpec(at string) (string, error) {
	hour, minute, err := habit.ParseTimeOfDay(at)
	if err != nil {
		return "", err
	}
	// second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * *", minute, hour), nil
}

// RunDaily calls job every day at the HH:MM wall time in loc until ctx is
// cancelled. A running job is allowed to finish before RunDaily returns.
func RunDaily(ctx context.Context, loc *time.Location, at string, job func(context.Context)) error {
	spec, err := dailySpec(at)
	if err != nil {
		return fmt.Errorf("nudge schedule: %w", err)
	}

	c := cron.New(cron.WithLocation(loc), cron.WithSeconds())
	if _, err := c.AddFunc(spec, func() { job(ctx) }); err != nil {
		return fmt.Errorf("nudge schedule: %w", err)
	}
	c.Start()
	logger.Info("Nudge scheduler started", "at", at, "location", loc.String())

	<-ctx.Done()
	<-c.Stop().Done()
	logger.Info("Nudge scheduler stopped")
	return nil
}
