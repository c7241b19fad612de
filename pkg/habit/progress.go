package habit

import (
	"slices"
	"time"
)

// Recompute derives the progress record of h as of today.
//
// Streaks are counted over the sorted completion entries, not over calendar
// days: a date with no entry at all is skipped, only an explicit false entry
// ends a run. The longest streak never decreases; it is taken over the full
// history only when prev is nil, otherwise it is max(prev, current).
func Recompute(h Habit, prev *HabitProgress, today, now time.Time) HabitProgress {
	completions := cloneCompletions(h.Completions)

	total, done := 0, 0
	for d := range h.ApplicableDates(today) {
		total++
		if completions[d] {
			done++
		}
	}
	rate := 0.0
	if total > 0 {
		rate = float64(done) / float64(total)
	}

	keys := sortedKeysUpTo(completions, FormatDate(today))
	current := currentStreak(keys, completions)
	longest := current
	if prev == nil {
		longest = max(longest, longestStreak(keys, completions))
	} else {
		longest = max(longest, prev.Streaks.LongestStreak)
	}

	return HabitProgress{
		HabitID:     h.ID,
		HabitName:   h.Name,
		Completions: completions,
		Streaks: Streaks{
			CurrentStreak: current,
			LongestStreak: longest,
		},
		Metrics: Metrics{
			TotalDays:      total,
			CompletedDays:  done,
			CompletionRate: rate,
		},
		LastUpdated: now.Unix(),
	}
}

// sortedKeysUpTo returns the completion dates on or before today in
// ascending order. YYYY-MM-DD sorts lexically in date order.
func sortedKeysUpTo(completions map[string]bool, today string) []string {
	keys := make([]string, 0, len(completions))
	for k := range completions {
		if k <= today {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func currentStreak(keys []string, completions map[string]bool) int {
	n := 0
	for i := len(keys) - 1; i >= 0; i-- {
		if !completions[keys[i]] {
			break
		}
		n++
	}
	return n
}

func longestStreak(keys []string, completions map[string]bool) int {
	longest, run := 0, 0
	for _, k := range keys {
		if completions[k] {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return longest
}
