package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"redditinsights/config"
	"redditinsights/logging"
	"redditinsights/tui"
)

var (
	viewAPIURL  string
	viewDelay   time.Duration
	viewTimeout time.Duration
	viewLogFile string
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Open the terminal viewer",
	RunE:  runView,
}

func init() {
	viewCmd.Flags().StringVar(&viewAPIURL, "api-url", "", "Backend base URL (overrides API_URL)")
	viewCmd.Flags().DurationVar(&viewDelay, "refresh-delay", config.DefaultRefreshDelay, "Wait after a refresh before reloading data")
	viewCmd.Flags().DurationVar(&viewTimeout, "timeout", 0, "HTTP timeout per request (0 = none)")
	viewCmd.Flags().StringVar(&viewLogFile, "log-file", "", "Viewer log file (overrides VIEWER_LOG)")
}

func runView(cmd *cobra.Command, args []string) error {
	vc := cfg.Viewer
	if viewAPIURL != "" {
		vc.APIBase = config.NormalizeBaseURL(viewAPIURL)
	}
	if cmd.Flags().Changed("refresh-delay") {
		vc.RefreshDelay = viewDelay
	}
	if cmd.Flags().Changed("timeout") {
		vc.HTTPTimeout = viewTimeout
	}
	if viewLogFile != "" {
		vc.LogFile = viewLogFile
	}

	// The terminal belongs to the viewer, so logs go to a file
	logger, closer, err := logging.NewFileLogger(vc.LogFile, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("opening viewer log: %w", err)
	}
	defer closer.Close()
	logger.WithField("api_base", vc.APIBase).Info("Starting viewer")

	m := tui.NewModel(vc, tui.NewAPIClient(vc), logger)
	program := tea.NewProgram(m, tea.WithAltScreen())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		return fmt.Errorf("running viewer: %w", err)
	}
	return nil
}
