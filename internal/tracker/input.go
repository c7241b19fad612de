package tracker

import (
	"strings"

	"github.com/brk3/habitkeeper/pkg/habit"
)

const (
	maxNameLength  = 40
	maxDurationMin = 24 * 60
)

// HabitInput carries the editable fields of a habit. Zero values leave the
// current value (or the default, on create) in place.
type HabitInput struct {
	ID              string          `json:"id,omitempty"`
	Name            string          `json:"name"`
	Category        habit.Category  `json:"category,omitempty"`
	StartDate       string          `json:"start_date,omitempty"`
	EndDate         string          `json:"end_date,omitempty"`
	SelectedDays    *habit.Weekdays `json:"selected_days,omitempty"`
	TimeOfDay       string          `json:"time_of_day,omitempty"`
	DurationMinutes int             `json:"duration_minutes,omitempty"`
}

func (in HabitInput) applyTo(h *habit.Habit) {
	if name := strings.TrimSpace(in.Name); name != "" {
		h.Name = name
	}
	if in.Category != "" {
		h.Category = in.Category
	}
	if in.StartDate != "" {
		h.StartDate = in.StartDate
	}
	if in.EndDate != "" {
		h.EndDate = in.EndDate
	}
	if in.SelectedDays != nil {
		h.SelectedDays = *in.SelectedDays
	}
	if in.TimeOfDay != "" {
		h.TimeOfDay = in.TimeOfDay
	}
	if in.DurationMinutes != 0 {
		h.DurationMinutes = in.DurationMinutes
	}
}

func validate(h habit.Habit) error {
	if h.Name == "" || len(h.Name) > maxNameLength {
		return invalid("habit name must be 1-%d characters", maxNameLength)
	}
	if !h.Category.Valid() {
		return invalid("unknown category %q", h.Category)
	}
	start, err := habit.ParseDate(h.StartDate)
	if err != nil {
		return invalid("start date: %v", err)
	}
	end, err := habit.ParseDate(h.EndDate)
	if err != nil {
		return invalid("end date: %v", err)
	}
	if end.Before(start) {
		return ErrInvalidRange
	}
	if h.SelectedDays.Count() == 0 {
		return ErrEmptySchedule
	}
	if _, _, err := habit.ParseTimeOfDay(h.TimeOfDay); err != nil {
		return invalid("%v", err)
	}
	if h.DurationMinutes <= 0 || h.DurationMinutes > maxDurationMin {
		return invalid("duration must be 1-%d minutes", maxDurationMin)
	}
	return nil
}
