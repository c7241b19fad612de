package habit

import (
	"iter"
	"strings"
	"time"
)

// ApplicableDates yields, in order, every date from start to min(end, asOf)
// inclusive whose weekday is selected. All arguments are reduced to their
// calendar day first. The sequence is empty when start lies after the bound,
// and may be ranged over any number of times.
func ApplicableDates(start, end time.Time, days Weekdays, asOf time.Time) iter.Seq[string] {
	start, end, asOf = CivilDate(start), CivilDate(end), CivilDate(asOf)
	bound := end
	if asOf.Before(bound) {
		bound = asOf
	}

	return func(yield func(string) bool) {
		for d := start; !d.After(bound); d = d.AddDate(0, 0, 1) {
			if !days.Has(d.Weekday()) {
				continue
			}
			if !yield(d.Format(DateLayout)) {
				return
			}
		}
	}
}

// ApplicableDates resolves the habit's own window. A habit whose dates do
// not parse has no applicable dates.
func (h Habit) ApplicableDates(asOf time.Time) iter.Seq[string] {
	start, end, err := h.Window()
	if err != nil {
		return func(func(string) bool) {}
	}
	return ApplicableDates(start, end, h.SelectedDays, asOf)
}

func (h Habit) Window() (start, end time.Time, err error) {
	if start, err = ParseDate(h.StartDate); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end, err = ParseDate(h.EndDate); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// ScheduledOn reports whether day is inside the habit's window and falls on
// a selected weekday.
func (h Habit) ScheduledOn(day time.Time) bool {
	start, end, err := h.Window()
	if err != nil {
		return false
	}
	day = CivilDate(day)
	if day.Before(start) || day.After(end) {
		return false
	}
	return h.SelectedDays.Has(day.Weekday())
}

// DescribeSchedule renders a short label for a weekly selection.
func DescribeSchedule(days Weekdays) string {
	switch n := days.Count(); {
	case n == 7:
		return "Every day"
	case n == 0:
		return "No days selected"
	}

	weekend := days[time.Sunday] || days[time.Saturday]
	workdays := 0
	for d := time.Monday; d <= time.Friday; d++ {
		if days[d] {
			workdays++
		}
	}
	switch {
	case workdays == 5 && !weekend:
		return "Weekdays"
	case workdays == 0 && days[time.Sunday] && days[time.Saturday]:
		return "Weekends"
	}

	var names []string
	for i, on := range days {
		if on {
			names = append(names, dayAbbrevs[i])
		}
	}
	return strings.Join(names, ", ")
}
