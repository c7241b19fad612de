package profile

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/brk3/habitkeeper/internal/cache"
	"github.com/brk3/habitkeeper/pkg/habit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHabits struct {
	habits []habit.Habit
	err    error
}

func (f fakeHabits) ListHabits(context.Context, string) ([]habit.Habit, error) {
	return f.habits, f.err
}

func TestProfile_DefaultsAndMerge(t *testing.T) {
	s := New(cache.NewMemory(), nil)
	ctx := context.Background()

	p, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), p)

	p, err = s.Update(ctx, "alice", Profile{Username: "  alice  "})
	require.NoError(t, err)
	assert.Equal(t, Profile{Username: "alice", Location: "Location"}, p)

	p, err = s.Update(ctx, "alice", Profile{Location: "Dublin", Username: "   "})
	require.NoError(t, err)
	assert.Equal(t, Profile{Username: "alice", Location: "Dublin"}, p)

	got, err := s.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	other, err := s.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), other)
}

func TestProfile_TooLong(t *testing.T) {
	s := New(cache.NewMemory(), nil)
	_, err := s.Update(context.Background(), "alice", Profile{Username: strings.Repeat("x", maxFieldLength+1)})
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestProfile_Stats(t *testing.T) {
	habits := fakeHabits{habits: []habit.Habit{
		{ID: "a", CompletedToday: true},
		{ID: "b"},
		{ID: "c", CompletedToday: true},
	}}
	s := New(cache.NewMemory(), habits)

	st, err := s.Stats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, Stats{TotalHabits: 3, CompletedToday: 2, CompletionRate: 67}, st)
}

func TestProfile_StatsEmptyAndError(t *testing.T) {
	st, err := New(cache.NewMemory(), fakeHabits{}).Stats(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, Stats{}, st)

	boom := errors.New("boom")
	_, err = New(cache.NewMemory(), fakeHabits{err: boom}).Stats(context.Background(), "alice")
	assert.ErrorIs(t, err, boom)
}
