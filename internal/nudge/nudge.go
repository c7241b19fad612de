// Package nudge reminds the user about habits still open late in the day.
package nudge

import (
	"context"
	"fmt"
	"time"

	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/brk3/habitkeeper/pkg/habit"
)

type Querier interface {
	TodayHabits(ctx context.Context) ([]habit.Habit, error)
	GetHabitSummary(ctx context.Context, habitID string) (*habit.HabitSummary, error)
}

type Notifier interface {
	SendNudge(ctx context.Context, habits []string, hoursLeft int) error
}

// HoursLeft is the number of whole hours until the next midnight in now's
// location.
func HoursLeft(now time.Time) int {
	midnight := habit.CivilDate(now).AddDate(0, 0, 1)
	midnight = time.Date(midnight.Year(), midnight.Month(), midnight.Day(), 0, 0, 0, 0, now.Location())
	return int(midnight.Sub(now) / time.Hour)
}

// PendingToday returns the names of today's habits that are not completed
// yet and carry a running streak.
func PendingToday(ctx context.Context, q Querier) ([]string, error) {
	habits, err := q.TodayHabits(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, h := range habits {
		if h.CompletedToday {
			continue
		}
		s, err := q.GetHabitSummary(ctx, h.ID)
		if err != nil {
			return nil, fmt.Errorf("summary for %s: %w", h.Name, err)
		}
		if s.Progress.Streaks.CurrentStreak > 0 {
			out = append(out, h.Name)
		}
	}
	return out, nil
}

// Nudge sends one reminder listing the pending habits, provided now falls
// within window hours of midnight. It returns the habits it reminded about.
func Nudge(ctx context.Context, q Querier, n Notifier, now time.Time, window int) ([]string, error) {
	hours := HoursLeft(now)
	if hours > window {
		logger.Debug("Outside nudge window", "hours_left", hours, "window", window)
		return nil, nil
	}

	pending, err := PendingToday(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("finding pending habits: %w", err)
	}
	if len(pending) == 0 {
		logger.Info("No habits need a nudge")
		return nil, nil
	}

	logger.Info("Sending nudge", "habits", pending, "hours_left", hours)
	if err := n.SendNudge(ctx, pending, hours); err != nil {
		return nil, fmt.Errorf("sending nudge: %w", err)
	}
	return pending, nil
}
