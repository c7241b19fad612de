package cmd

import (
	"fmt"
	"strings"

	"github.com/brk3/habitkeeper/internal/tracker"
	"github.com/brk3/habitkeeper/pkg/habit"
	"github.com/spf13/cobra"
)

var addFlags struct {
	category string
	start    string
	end      string
	days     string
	at       string
	duration int
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a habit",
	Long: `The "add" command creates a habit. Unset fields default to a health habit running
for one month from today, every day, at the current time, for 30 minutes.

Days take "daily", "weekdays", "weekends" or a comma list such as "mon,wed,fri".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := tracker.HabitInput{
			Name:            args[0],
			Category:        habit.Category(addFlags.category),
			StartDate:       addFlags.start,
			EndDate:         addFlags.end,
			TimeOfDay:       addFlags.at,
			DurationMinutes: addFlags.duration,
		}
		if addFlags.days != "" {
			days, err := parseDays(addFlags.days)
			if err != nil {
				return err
			}
			in.SelectedDays = &days
		}

		h, err := newClient().CreateHabit(cmd.Context(), in)
		if err != nil {
			return err
		}
		cmd.Printf("Created %q (%s, %s) with id %s\n", h.Name, habit.DescribeSchedule(h.SelectedDays),
			habit.FormatDateRange(h.StartDate, h.EndDate), h.ID)
		return nil
	},
}

func parseDays(s string) (habit.Weekdays, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "daily", "all", "every day":
		return habit.AllDays(), nil
	case "weekdays":
		return habit.Weekdays{false, true, true, true, true, true, false}, nil
	case "weekends":
		return habit.Weekdays{true, false, false, false, false, false, true}, nil
	}

	var days habit.Weekdays
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if len(part) < 3 {
			return habit.Weekdays{}, fmt.Errorf("unknown day %q", part)
		}
		found := false
		for i, abbrev := range []string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"} {
			if strings.HasPrefix(part, abbrev) {
				days[i] = true
				found = true
				break
			}
		}
		if !found {
			return habit.Weekdays{}, fmt.Errorf("unknown day %q", part)
		}
	}
	return days, nil
}

func init() {
	addCmd.Flags().StringVarP(&addFlags.category, "category", "c", "", "one of health, fitness, productivity, mindfulness, music, education")
	addCmd.Flags().StringVar(&addFlags.start, "start", "", "first day, YYYY-MM-DD")
	addCmd.Flags().StringVar(&addFlags.end, "end", "", "last day, YYYY-MM-DD")
	addCmd.Flags().StringVarP(&addFlags.days, "days", "d", "", "days the habit applies on")
	addCmd.Flags().StringVar(&addFlags.at, "at", "", "time of day, HH:MM")
	addCmd.Flags().IntVar(&addFlags.duration, "duration", 0, "duration in minutes")
	rootCmd.AddCommand(addCmd)
}
