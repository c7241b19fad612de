package cmd

import (
	"fmt"
	"os"

	"github.com/brk3/habitkeeper/internal/apiclient"
	"github.com/brk3/habitkeeper/internal/config"
	"github.com/brk3/habitkeeper/internal/logger"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "habits",
	Short: "Schedule habits and track their completion streaks",
	Long: `
	Habits keeps a set of recurring habits, each with a date range and the weekdays it
	applies on. Mark a day done and it keeps your completion rate and streaks up to date.
	Run "habits server" to host the API; the other commands talk to it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("error loading config file: %w", err)
		}
		level, err := cfg.LogLevel()
		if err != nil {
			return err
		}
		logger.Setup(os.Stderr, level, cfg.Log.Format)
		return nil
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func newClient() *apiclient.Client {
	return apiclient.New(cfg.APIBaseURL, cfg.AuthToken)
}
