package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"redditinsights/logging"
	"redditinsights/orchestrator"
)

var (
	fetchSubreddits []string
	fetchOutput     string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Run one collect cycle and print a report",
	RunE:  runFetch,
}

func init() {
	fetchCmd.Flags().StringSliceVar(&fetchSubreddits, "subreddits", nil, "Subreddits to fetch (overrides SUBREDDITS)")
	fetchCmd.Flags().StringVar(&fetchOutput, "output", "", "Snapshot path (overrides OUTPUT_PATH)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	c := cfg
	if len(fetchSubreddits) > 0 {
		c.Collector.Subreddits = fetchSubreddits
	}
	if fetchOutput != "" {
		c.Collector.OutputPath = fetchOutput
	}

	logger := logging.NewLogger(c.LogLevel)
	b := newBackend(cmd.Context(), c, "fetch", logger)
	defer b.Close()

	listing, err := b.orchestrator.RunOnce(cmd.Context())
	if err != nil {
		return err
	}

	orchestrator.WriteReport(cmd.OutOrStdout(), c.Collector.Subreddits, listing)
	fmt.Fprintf(cmd.OutOrStdout(), "\nSnapshot written to %s\n", c.Collector.OutputPath)
	return nil
}
