package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"redditinsights/config"
)

var (
	cfg      config.Config
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "redditinsights",
	Short: "Top posts from r/n8n and r/automation",
	Long: `redditinsights collects the newest posts of a few subreddits, ranks them by
engagement (upvotes + comments) and serves them to a terminal viewer.

  view    open the terminal viewer against a running backend
  serve   run the backend (GET /data, POST /refresh)
  fetch   run one collect cycle and print a report`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		loaded, err := config.Load()
		if err != nil {
			return err
		}
		cfg = loaded
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", config.DefaultLogLevel, "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(viewCmd, serveCmd, fetchCmd, logsCmd, checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
