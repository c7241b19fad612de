package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/brk3/habitkeeper/internal/apiclient"
	"github.com/brk3/habitkeeper/pkg/habit"
	"github.com/spf13/cobra"
)

var doneCmd = &cobra.Command{
	Use:   "done <habit> [date]",
	Short: "Toggle a habit's completion for today or a given date",
	Long: `The "done" command flips the completion of a habit, identified by id or name.
Running it twice for the same day undoes it. The date defaults to today.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := "today"
		if len(args) == 2 {
			date = args[1]
		}

		c := newClient()
		h, err := resolveHabit(cmd.Context(), c, args[0])
		if err != nil {
			return err
		}
		resp, err := c.ToggleCompletion(cmd.Context(), h.ID, date)
		if err != nil {
			return err
		}

		done := resp.Habit.Completions[date]
		if date == "today" {
			done = resp.Habit.CompletedToday
		}
		state := "not done"
		if done {
			state = "done"
		}
		p := resp.Progress
		cmd.Printf("%s marked %s. Streak %d (best %d), %d/%d days (%.0f%%)\n",
			h.Name, state, p.Streaks.CurrentStreak, p.Streaks.LongestStreak,
			p.Metrics.CompletedDays, p.Metrics.TotalDays, p.Metrics.CompletionRate*100)
		return nil
	},
}

// resolveHabit matches ref against habit ids first, then names ignoring case.
func resolveHabit(ctx context.Context, c *apiclient.Client, ref string) (habit.Habit, error) {
	habits, err := c.ListHabits(ctx)
	if err != nil {
		return habit.Habit{}, err
	}
	return findHabit(habits, ref)
}

func findHabit(habits []habit.Habit, ref string) (habit.Habit, error) {
	for _, h := range habits {
		if h.ID == ref {
			return h, nil
		}
	}
	var matches []habit.Habit
	for _, h := range habits {
		if strings.EqualFold(h.Name, ref) {
			matches = append(matches, h)
		}
	}
	switch len(matches) {
	case 0:
		return habit.Habit{}, fmt.Errorf("no habit named %q", ref)
	case 1:
		return matches[0], nil
	default:
		return habit.Habit{}, fmt.Errorf("%d habits are named %q, use the id instead", len(matches), ref)
	}
}

func init() {
	rootCmd.AddCommand(doneCmd)
}
