package habit

import (
	"math"
	"slices"
	"time"
)

const defaultDurationMinutes = 30

// NewHabitDefaults returns the blank habit offered by the add form: every
// day selected, a one-month window starting on now's calendar day.
func NewHabitDefaults(now time.Time) Habit {
	today := CivilDate(now)
	return Habit{
		Category:        CategoryHealth,
		StartDate:       today.Format(DateLayout),
		EndDate:         today.AddDate(0, 1, 0).Format(DateLayout),
		SelectedDays:    AllDays(),
		TimeOfDay:       now.Format("15:04"),
		DurationMinutes: defaultDurationMinutes,
		Completions:     map[string]bool{},
	}
}

// WeekProgress is the rounded percentage of completed dates in the seven-day
// window centred on today, counting selected days up to today only.
func WeekProgress(h Habit, today time.Time) int {
	today = CivilDate(today)
	total, done := 0, 0
	for i := -3; i <= 0; i++ {
		d := today.AddDate(0, 0, i)
		if !h.SelectedDays.Has(d.Weekday()) {
			continue
		}
		total++
		if h.Completions[d.Format(DateLayout)] {
			done++
		}
	}
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

func FormatDateRange(start, end string) string {
	if start == "" || end == "" {
		return ""
	}
	s, err := ParseDate(start)
	if err != nil {
		return ""
	}
	e, err := ParseDate(end)
	if err != nil {
		return ""
	}
	const layout = "Jan 2, 2006"
	return s.Format(layout) + " - " + e.Format(layout)
}

// SortForDisplay orders habits completed today after the rest, keeping the
// relative order within each group.
func SortForDisplay(habits []Habit) {
	slices.SortStableFunc(habits, func(a, b Habit) int {
		switch {
		case a.CompletedToday == b.CompletedToday:
			return 0
		case a.CompletedToday:
			return 1
		default:
			return -1
		}
	})
}

func Summarize(h Habit, p HabitProgress, today time.Time) HabitSummary {
	return HabitSummary{
		Habit:        h,
		Progress:     p,
		Schedule:     DescribeSchedule(h.SelectedDays),
		DateRange:    FormatDateRange(h.StartDate, h.EndDate),
		WeekProgress: WeekProgress(h, today),
		Style:        h.Category.Style(),
	}
}
