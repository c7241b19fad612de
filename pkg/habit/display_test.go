package habit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHabitDefaults(t *testing.T) {
	now := time.Date(2024, 1, 31, 7, 45, 0, 0, time.UTC)
	h := NewHabitDefaults(now)

	assert.Equal(t, "2024-01-31", h.StartDate)
	assert.Equal(t, "2024-03-02", h.EndDate)
	assert.Equal(t, AllDays(), h.SelectedDays)
	assert.Equal(t, "07:45", h.TimeOfDay)
	assert.Equal(t, 30, h.DurationMinutes)
	assert.Equal(t, CategoryHealth, h.Category)
}

func TestWeekProgress(t *testing.T) {
	h := januaryHabit(map[string]bool{
		"2024-01-01": true,
		"2024-01-02": true,
		"2024-01-04": true,
		"2024-01-05": true, // future, outside the count
	})
	assert.Equal(t, 75, WeekProgress(h, day(t, "2024-01-04")))

	h.SelectedDays = Weekdays{}
	assert.Equal(t, 0, WeekProgress(h, day(t, "2024-01-04")))
}

func TestFormatDateRange(t *testing.T) {
	assert.Equal(t, "Jan 1, 2024 - Jan 31, 2024", FormatDateRange("2024-01-01", "2024-01-31"))
	assert.Empty(t, FormatDateRange("", "2024-01-31"))
	assert.Empty(t, FormatDateRange("2024-01-01", "soon"))
}

func TestSortForDisplay(t *testing.T) {
	habits := []Habit{
		{ID: "a", CompletedToday: true},
		{ID: "b"},
		{ID: "c", CompletedToday: true},
		{ID: "d"},
	}
	SortForDisplay(habits)

	var ids []string
	for _, h := range habits {
		ids = append(ids, h.ID)
	}
	assert.Equal(t, []string{"b", "d", "a", "c"}, ids)
}

func TestCategoryStyle(t *testing.T) {
	assert.Equal(t, "guitar", CategoryMusic.Style().Icon)
	assert.False(t, Category("cooking").Valid())
	assert.Equal(t, CategoryHealth.Style(), Category("cooking").Style())
	for _, c := range Categories() {
		assert.True(t, c.Valid(), c)
	}
}

func TestWeekdaysJSON(t *testing.T) {
	var w Weekdays
	require.NoError(t, json.Unmarshal([]byte(`[1,3,5]`), &w))
	assert.Equal(t, Weekdays{false, true, false, true, false, true, false}, w)

	require.NoError(t, json.Unmarshal([]byte(`[true,false,false,false,false,false,true]`), &w))
	assert.Equal(t, "Weekends", DescribeSchedule(w))

	assert.Error(t, json.Unmarshal([]byte(`[true,false]`), &w))
	assert.Error(t, json.Unmarshal([]byte(`[9]`), &w))

	out, err := json.Marshal(weekdaysOnly)
	require.NoError(t, err)
	assert.JSONEq(t, `[false,true,true,true,true,true,false]`, string(out))
}

func TestSummarize(t *testing.T) {
	h := januaryHabit(map[string]bool{"2024-01-04": true})
	h.Category = CategoryEducation
	today := day(t, "2024-01-04")
	s := Summarize(h, Recompute(h, nil, today, today), today)

	assert.Equal(t, "Every day", s.Schedule)
	assert.Equal(t, "Jan 1, 2024 - Jan 31, 2024", s.DateRange)
	assert.Equal(t, 25, s.WeekProgress)
	assert.Equal(t, "book", s.Style.Icon)
	assert.Equal(t, 1, s.Progress.Streaks.CurrentStreak)
}
