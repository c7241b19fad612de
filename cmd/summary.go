package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var summaryCmd = &cobra.Command{
	Use:   "summary <habit>",
	Short: "Show schedule, streaks and completion rate for a habit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		h, err := resolveHabit(cmd.Context(), c, args[0])
		if err != nil {
			return err
		}
		s, err := c.GetHabitSummary(cmd.Context(), h.ID)
		if err != nil {
			return err
		}

		p := s.Progress
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "Habit:\t%s (%s)\n", s.Habit.Name, s.Habit.Category)
		fmt.Fprintf(tw, "Schedule:\t%s at %s, %d min\n", s.Schedule, s.Habit.TimeOfDay, s.Habit.DurationMinutes)
		fmt.Fprintf(tw, "Dates:\t%s\n", s.DateRange)
		fmt.Fprintf(tw, "Current streak:\t%d\n", p.Streaks.CurrentStreak)
		fmt.Fprintf(tw, "Longest streak:\t%d\n", p.Streaks.LongestStreak)
		fmt.Fprintf(tw, "Completed:\t%d of %d days (%.0f%%)\n", p.Metrics.CompletedDays, p.Metrics.TotalDays, p.Metrics.CompletionRate*100)
		fmt.Fprintf(tw, "This week:\t%d%%\n", s.WeekProgress)
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
