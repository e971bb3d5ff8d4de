package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"redditinsights/activity"
	"redditinsights/logging"
)

var (
	logsLevel  string
	logsScript string
	logsLimit  int
	logsFollow bool
)

var (
	levelStyles = map[string]lipgloss.Style{
		activity.LevelInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		activity.LevelWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFB86C")),
		activity.LevelError:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")).Bold(true),
	}
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show the activity log",
	RunE:  runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "Only show INFO, WARNING or ERROR entries")
	logsCmd.Flags().StringVar(&logsScript, "script", "", "Only show entries from one component (api, fetch)")
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 50, "Number of entries to show (0 = all)")
	logsCmd.Flags().BoolVarP(&logsFollow, "follow", "f", false, "Stream new entries from Kafka")
}

func runLogs(cmd *cobra.Command, args []string) error {
	level := strings.ToUpper(logsLevel)
	out := cmd.OutOrStdout()

	entries, err := activity.ReadEntries(cfg.Collector.ActivityLog)
	if err != nil {
		return err
	}
	for _, e := range activity.Filter(entries, level, logsScript, logsLimit) {
		printEntry(out, e)
	}

	if !logsFollow {
		return nil
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return fmt.Errorf("--follow needs KAFKA_BROKERS")
	}

	logger := logging.NewLogger(cfg.LogLevel)
	groupID := fmt.Sprintf("redditinsights-logs-%d", time.Now().UnixNano())
	follower, err := activity.NewFollower(cfg.Kafka.Brokers, cfg.Kafka.Topic, groupID, level, logsScript,
		func(e activity.Entry) { printEntry(out, e) }, logger)
	if err != nil {
		return err
	}
	defer follower.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return follower.Run(ctx)
}

func printEntry(w io.Writer, e activity.Entry) {
	style, ok := levelStyles[e.Level]
	if !ok {
		style = lipgloss.NewStyle()
	}
	line := fmt.Sprintf("%s %s %s %s",
		dimStyle.Render(e.Timestamp.Local().Format(time.DateTime)),
		style.Render(fmt.Sprintf("%-7s", e.Level)),
		dimStyle.Render("["+e.Script+"]"),
		e.Message,
	)
	if len(e.Data) > 0 {
		line += " " + dimStyle.Render(fmt.Sprint(e.Data))
	}
	fmt.Fprintln(w, line)
}
