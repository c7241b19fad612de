package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/brk3/habitkeeper/internal/nudge"
	"github.com/brk3/habitkeeper/internal/nudge/resend"
	"github.com/spf13/cobra"
)

var nudgeFlags struct {
	daemon  bool
	dailyAt string
	hours   int
}

var nudgeCmd = &cobra.Command{
	Use:   "nudge",
	Short: "E-mail a reminder for today's habits that are still open",
	Long: `The "nudge" command sends one e-mail listing today's unfinished habits that carry a
streak, if midnight is within the configured number of hours. With --daemon it keeps
running and checks once a day at nudge.daily_at, or at --daily-at when given.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Nudge.ResendAPIKey == "" {
			return fmt.Errorf("HABITS_RESEND_API_KEY environment variable is not set")
		}
		if cfg.Nudge.Email == "" {
			return fmt.Errorf("HABITS_NOTIFY_EMAIL environment variable is not set")
		}
		if !cmd.Flags().Changed("hours") {
			nudgeFlags.hours = cfg.Nudge.Hours
		}
		if nudgeFlags.dailyAt != "" {
			nudgeFlags.daemon = true
		} else {
			nudgeFlags.dailyAt = cfg.Nudge.DailyAt
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := cfg.Location()
		if err != nil {
			return err
		}
		n := &resend.ResendNotifier{
			ApiKey: cfg.Nudge.ResendAPIKey,
			From:   cfg.Nudge.From,
			Email:  cfg.Nudge.Email,
		}
		q := newClient()
		run := func(ctx context.Context) {
			if _, err := nudge.Nudge(ctx, q, n, time.Now().In(loc), nudgeFlags.hours); err != nil {
				logger.Error("Nudge failed", "error", err)
			}
		}

		if !nudgeFlags.daemon {
			_, err := nudge.Nudge(cmd.Context(), q, n, time.Now().In(loc), nudgeFlags.hours)
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return nudge.RunDaily(ctx, loc, nudgeFlags.dailyAt, run)
	},
}

func init() {
	nudgeCmd.Flags().BoolVar(&nudgeFlags.daemon, "daemon", false, "keep running and check once a day")
	nudgeCmd.Flags().StringVar(&nudgeFlags.dailyAt, "daily-at", "", "daily check time, HH:MM; implies --daemon")
	nudgeCmd.Flags().IntVar(&nudgeFlags.hours, "hours", 0, "only nudge when midnight is this many hours away or less")
	rootCmd.AddCommand(nudgeCmd)
}
