package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/brk3/habitkeeper/pkg/habit"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List habits",
	Long:  `The "list" command lets you list your tracked habits, open ones first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		habits, err := newClient().ListHabits(cmd.Context())
		if err != nil {
			return err
		}
		printHabits(cmd.OutOrStdout(), habits)
		return nil
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "List the habits scheduled for today",
	RunE: func(cmd *cobra.Command, args []string) error {
		habits, err := newClient().TodayHabits(cmd.Context())
		if err != nil {
			return err
		}
		if len(habits) == 0 {
			cmd.Println("Nothing scheduled today.")
			return nil
		}
		printHabits(cmd.OutOrStdout(), habits)
		return nil
	},
}

func printHabits(out io.Writer, habits []habit.Habit) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\tNAME\tSCHEDULE\tTIME\tID")
	for _, h := range habits {
		mark := "[ ]"
		if h.CompletedToday {
			mark = "[x]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, h.Name, habit.DescribeSchedule(h.SelectedDays), h.TimeOfDay, h.ID)
	}
	tw.Flush()
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(todayCmd)
}
