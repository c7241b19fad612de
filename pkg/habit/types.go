package habit

type Habit struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Category        Category        `json:"category"`
	StartDate       string          `json:"start_date"`
	EndDate         string          `json:"end_date"`
	SelectedDays    Weekdays        `json:"selected_days"`
	TimeOfDay       string          `json:"time_of_day"`
	DurationMinutes int             `json:"duration_minutes"`
	Completions     map[string]bool `json:"completions"`
	CompletedToday  bool            `json:"completed_today"`
	CreatedAt       int64           `json:"created_at"`
}

type Streaks struct {
	CurrentStreak int `json:"current_streak"`
	LongestStreak int `json:"longest_streak"`
}

type Metrics struct {
	TotalDays      int     `json:"total_days"`
	CompletedDays  int     `json:"completed_days"`
	CompletionRate float64 `json:"completion_rate"`
}

// HabitProgress is a cached derivation of a Habit. It can always be rebuilt
// from the habit's own fields with Recompute.
type HabitProgress struct {
	HabitID     string          `json:"habit_id"`
	HabitName   string          `json:"habit_name"`
	Completions map[string]bool `json:"completions"`
	Streaks     Streaks         `json:"streaks"`
	Metrics     Metrics         `json:"metrics"`
	LastUpdated int64           `json:"last_updated"`
}

type HabitSummary struct {
	Habit        Habit         `json:"habit"`
	Progress     HabitProgress `json:"progress"`
	Schedule     string        `json:"schedule"`
	DateRange    string        `json:"date_range"`
	WeekProgress int           `json:"week_progress"`
	Style        Style         `json:"style"`
}

func cloneCompletions(m map[string]bool) map[string]bool {
	out := make(map[string]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
