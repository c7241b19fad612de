package habit

import (
	"encoding/json"
	"fmt"
	"time"
)

// Weekdays marks the days a habit applies on, indexed Sunday=0 .. Saturday=6.
type Weekdays [7]bool

var dayAbbrevs = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

func AllDays() Weekdays {
	return Weekdays{true, true, true, true, true, true, true}
}

func (w Weekdays) Has(d time.Weekday) bool {
	return w[int(d)]
}

func (w Weekdays) Count() int {
	n := 0
	for _, on := range w {
		if on {
			n++
		}
	}
	return n
}

func (w Weekdays) MarshalJSON() ([]byte, error) {
	return json.Marshal([7]bool(w))
}

// UnmarshalJSON accepts the boolean form and the older list-of-indices form,
// e.g. [1,3,5] for Monday, Wednesday and Friday.
func (w *Weekdays) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}

	var flags []bool
	if err := json.Unmarshal(data, &flags); err == nil {
		if len(flags) != 7 {
			return fmt.Errorf("selected days: want 7 entries, got %d", len(flags))
		}
		copy(w[:], flags)
		return nil
	}

	var idx []int
	if err := json.Unmarshal(data, &idx); err != nil {
		return fmt.Errorf("selected days: %w", err)
	}
	var out Weekdays
	for _, i := range idx {
		if i < 0 || i > 6 {
			return fmt.Errorf("selected days: index %d out of range", i)
		}
		out[i] = true
	}
	*w = out
	return nil
}
