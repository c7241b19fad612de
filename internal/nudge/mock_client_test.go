package nudge

import (
	"context"

	"github.com/brk3/habitkeeper/pkg/habit"
)

type mockClient struct {
	habits  []habit.Habit
	summary map[string]*habit.HabitSummary
	err     error
}

func (f *mockClient) TodayHabits(ctx context.Context) ([]habit.Habit, error) {
	return f.habits, f.err
}

func (f *mockClient) GetHabitSummary(ctx context.Context, habitID string) (*habit.HabitSummary, error) {
	if s, ok := f.summary[habitID]; ok {
		return s, f.err
	}
	return &habit.HabitSummary{}, f.err
}
