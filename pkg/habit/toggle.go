package habit

import "time"

type ToggleResult struct {
	Habit     Habit
	Date      string
	Completed bool
	// Recompute is always set: the caller must rebuild and persist the
	// progress record together with the habit.
	Recompute bool
}

// Toggle flips the completion of date on a copy of h. A missing entry counts
// as not completed. Toggle does not check that date is applicable or in the
// past; callers enforce that policy before calling it.
func Toggle(h Habit, date string, today time.Time) ToggleResult {
	h.Completions = cloneCompletions(h.Completions)
	h.Completions[date] = !h.Completions[date]
	if date == FormatDate(today) {
		h.CompletedToday = h.Completions[date]
	}
	return ToggleResult{
		Habit:     h,
		Date:      date,
		Completed: h.Completions[date],
		Recompute: true,
	}
}
