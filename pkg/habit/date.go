package habit

import (
	"fmt"
	"time"
)

// DateLayout is the key format of completion maps. It doubles as a sort key,
// so it must never change.
const DateLayout = "2006-01-02"

// CivilDate drops the clock and zone of t, keeping the calendar day as seen
// in t's own location. The result is midnight UTC.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return CivilDate(t).Format(DateLayout)
}

// ParseTimeOfDay validates an HH:MM wall-clock time.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	return t.Hour(), t.Minute(), nil
}
