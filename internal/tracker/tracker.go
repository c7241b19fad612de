// Package tracker applies user intent to habits: it validates input, guards
// the completion policy and is the only place progress is recomputed.
package tracker

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/brk3/habitkeeper/internal/feed"
	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/brk3/habitkeeper/internal/storage"
	"github.com/brk3/habitkeeper/pkg/habit"
	"github.com/google/uuid"
)

// streak lengths that earn a feed notification
var milestones = []int{7, 30, 100}

type Tracker struct {
	store storage.Store
	feed  *feed.Feed
	now   func() time.Time
	loc   *time.Location
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLocation sets the zone deciding which calendar day is today.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) { t.loc = loc }
}

func WithFeed(f *feed.Feed) Option {
	return func(t *Tracker) { t.feed = f }
}

func New(store storage.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store: store,
		now:   time.Now,
		loc:   time.Local,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Today() time.Time {
	return habit.CivilDate(t.now().In(t.loc))
}

// project refreshes the completed-today flag, which goes stale at midnight.
func (t *Tracker) project(h habit.Habit) habit.Habit {
	h.CompletedToday = h.Completions[habit.FormatDate(t.Today())]
	return h
}

func (t *Tracker) recompute(h habit.Habit, prev *habit.HabitProgress) habit.HabitProgress {
	return habit.Recompute(h, prev, t.Today(), t.now())
}

func (t *Tracker) CreateHabit(ctx context.Context, userID string, in HabitInput) (habit.Habit, error) {
	now := t.now()
	h := habit.NewHabitDefaults(now.In(t.loc))
	in.applyTo(&h)
	h.ID = in.ID
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	h.CreatedAt = now.Unix()

	if err := validate(h); err != nil {
		return habit.Habit{}, err
	}

	logger.Info("Creating habit", "user_id", userID, "habit_id", h.ID, "name", h.Name)
	h, _, err := t.store.CreateHabit(userID, h, func(h *habit.Habit, prev *habit.HabitProgress) (habit.HabitProgress, error) {
		return t.recompute(*h, prev), nil
	})
	if err != nil {
		return habit.Habit{}, storeErr("creating habit", err)
	}

	style := h.Category.Style()
	t.notify(ctx, userID, feed.Notification{
		Title:       h.Name,
		Message:     fmt.Sprintf("You've created a new habit: %s", h.Name),
		Type:        feed.TypeHabitCreated,
		Icon:        style.Icon,
		IconColor:   style.Color,
		IconBgColor: style.BackgroundColor,
	})
	return t.project(h), nil
}

// UpdateHabit edits name, category and schedule. The id, creation time and
// completion history are kept, and progress is rebuilt for the new schedule.
func (t *Tracker) UpdateHabit(ctx context.Context, userID, habitID string, in HabitInput) (habit.Habit, error) {
	if in.ID != "" && in.ID != habitID {
		return habit.Habit{}, invalid("habit id cannot be changed")
	}
	h, _, err := t.store.UpdateHabit(userID, habitID, func(h *habit.Habit, prev *habit.HabitProgress) (habit.HabitProgress, error) {
		in.applyTo(h)
		if err := validate(*h); err != nil {
			return habit.HabitProgress{}, err
		}
		return t.recompute(*h, prev), nil
	})
	if err != nil {
		return habit.Habit{}, storeErr("updating habit", err)
	}
	logger.Info("Habit updated", "user_id", userID, "habit_id", habitID)
	return t.project(h), nil
}

func (t *Tracker) DeleteHabit(ctx context.Context, userID, habitID string) error {
	if err := t.store.DeleteHabit(userID, habitID); err != nil {
		return storeErr("deleting habit", err)
	}
	logger.Info("Habit deleted", "user_id", userID, "habit_id", habitID)
	return nil
}

func (t *Tracker) GetHabit(ctx context.Context, userID, habitID string) (habit.Habit, error) {
	h, err := t.store.GetHabit(userID, habitID)
	if err != nil {
		return habit.Habit{}, storeErr("loading habit", err)
	}
	return t.project(h), nil
}

// ListHabits returns the user's habits in display order.
func (t *Tracker) ListHabits(ctx context.Context, userID string) ([]habit.Habit, error) {
	habits, err := t.store.ListHabits(userID)
	if err != nil {
		return nil, storeErr("listing habits", err)
	}
	for i := range habits {
		habits[i] = t.project(habits[i])
	}
	slices.SortStableFunc(habits, func(a, b habit.Habit) int {
		return cmp.Compare(a.CreatedAt, b.CreatedAt)
	})
	habit.SortForDisplay(habits)
	return habits, nil
}

// TodayHabits lists the habits scheduled for today.
func (t *Tracker) TodayHabits(ctx context.Context, userID string) ([]habit.Habit, error) {
	habits, err := t.ListHabits(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := t.Today()
	return slices.DeleteFunc(habits, func(h habit.Habit) bool {
		return !h.ScheduledOn(today)
	}), nil
}

// GetProgress derives progress as of today. The stored record only
// contributes its longest streak; nothing is written.
func (t *Tracker) GetProgress(ctx context.Context, userID, habitID string) (habit.HabitProgress, error) {
	h, err := t.store.GetHabit(userID, habitID)
	if err != nil {
		return habit.HabitProgress{}, storeErr("loading habit", err)
	}
	stored, found, err := t.store.GetProgress(userID, habitID)
	if err != nil {
		return habit.HabitProgress{}, storeErr("loading progress", err)
	}
	var prev *habit.HabitProgress
	if found {
		prev = &stored
	}
	return t.recompute(h, prev), nil
}

func (t *Tracker) HabitSummary(ctx context.Context, userID, habitID string) (habit.HabitSummary, error) {
	p, err := t.GetProgress(ctx, userID, habitID)
	if err != nil {
		return habit.HabitSummary{}, err
	}
	h, err := t.GetHabit(ctx, userID, habitID)
	if err != nil {
		return habit.HabitSummary{}, err
	}
	return habit.Summarize(h, p, t.Today()), nil
}

// ToggleCompletion flips one day of a habit and stores the habit together
// with its recomputed progress. Only scheduled dates up to today may be
// toggled.
func (t *Tracker) ToggleCompletion(ctx context.Context, userID, habitID, date string) (habit.Habit, habit.HabitProgress, error) {
	d, err := habit.ParseDate(date)
	if err != nil {
		return habit.Habit{}, habit.HabitProgress{}, invalid("%v", err)
	}
	today := t.Today()
	if d.After(today) {
		return habit.Habit{}, habit.HabitProgress{}, ErrFutureDate
	}
	date = habit.FormatDate(d)

	var completed bool
	h, p, err := t.store.UpdateHabit(userID, habitID, func(h *habit.Habit, prev *habit.HabitProgress) (habit.HabitProgress, error) {
		if !h.ScheduledOn(d) {
			return habit.HabitProgress{}, ErrNotApplicable
		}
		res := habit.Toggle(*h, date, today)
		*h = res.Habit
		completed = res.Completed
		return t.recompute(*h, prev), nil
	})
	if err != nil {
		return habit.Habit{}, habit.HabitProgress{}, storeErr("toggling completion", err)
	}

	logger.Info("Toggled habit completion",
		"user_id", userID, "habit_id", habitID, "date", date, "completed", completed,
		"current_streak", p.Streaks.CurrentStreak, "longest_streak", p.Streaks.LongestStreak)

	if completed && slices.Contains(milestones, p.Streaks.CurrentStreak) {
		t.notify(ctx, userID, feed.Notification{
			Title:       "Streak Milestone!",
			Message:     fmt.Sprintf("Congratulations! You've maintained a %d-day streak for %s", p.Streaks.CurrentStreak, h.Name),
			Type:        feed.TypeStreakMilestone,
			Icon:        "fire",
			IconColor:   "#FF6B6B",
			IconBgColor: "#FFEAEA",
		})
	}
	return t.project(h), p, nil
}

// notify is best effort: the habit change has already been stored.
func (t *Tracker) notify(ctx context.Context, userID string, n feed.Notification) {
	if t.feed == nil {
		return
	}
	if _, err := t.feed.Add(ctx, userID, n); err != nil {
		logger.WarnContext(ctx, "Failed to add notification", "user_id", userID, "type", n.Type, "error", err)
	}
}
