package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"redditinsights/api"
	"redditinsights/logging"
	"redditinsights/scheduler"
	"redditinsights/storage"
)

var (
	servePort     string
	serveSchedule string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the backend HTTP service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP port (overrides PORT)")
	serveCmd.Flags().StringVar(&serveSchedule, "schedule", "", "Cron schedule for automatic refreshes, e.g. \"@every 30m\" (overrides REFRESH_SCHEDULE)")
}

func runServe(cmd *cobra.Command, args []string) error {
	sc := cfg.Server
	if servePort != "" {
		sc.Port = servePort
	}
	if serveSchedule != "" {
		sc.Schedule = serveSchedule
	}

	logger := logging.NewLogger(cfg.LogLevel)
	gin.SetMode(gin.ReleaseMode)

	ctx := cmd.Context()
	b := newBackend(ctx, cfg, "api", logger)
	defer b.Close()

	var source api.DataSource = storage.NewFileSource(cfg.Collector.OutputPath)
	if b.store != nil {
		source = b.store
	}

	server := api.NewServer(source, b.orchestrator, cfg.Collector.Subreddits, sc.DataLimit, logger)
	httpServer := &http.Server{
		Addr:    ":" + sc.Port,
		Handler: api.NewRouter(server, sc.AllowedOrigins),
	}

	var sched *scheduler.Scheduler
	if sc.Schedule != "" {
		sched = scheduler.New(server.Refresh, logger)
		if err := sched.Start(sc.Schedule); err != nil {
			return err
		}
		defer sched.Stop()
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("Starting server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-sigChan:
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
