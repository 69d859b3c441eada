package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/housedash/internal/api"
	"github.com/wonny/housedash/internal/api/handlers"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard as a local server",
	Long: `Loads the dataset once and serves the dashboard.

Endpoints:
  GET  /                                       - selector page
  GET  /ws                                     - selector websocket
  GET  /health                                 - health check
  GET  /metrics                                - Prometheus metrics
  GET  /api/regions                            - region list
  GET  /api/rankings                           - global top/bottom leaderboard
  GET  /api/dataset/quality                    - dataset coverage snapshot
  GET  /api/regions/{region}/dashboard         - every view for one region
  GET  /api/regions/{region}/metrics           - yearly metrics
  GET  /api/regions/{region}/forecast          - 24-month forecast
  GET  /api/regions/{region}/charts/{kind}     - chart spec (line|bar|forecast)
  GET  /api/regions/{region}/charts/{kind}.png - rendered chart
  GET  /api/regions/{region}/export.xlsx       - tables as a workbook

Example:
  go run ./cmd/housedash serve --dataset housing_data.csv --port 8080`,
	RunE: runServe,
}

var (
	servePort string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	d, err := buildDeps(ctx)
	if err != nil {
		return err
	}
	if servePort != "" {
		d.cfg.Port = servePort
	}
	log := d.log

	// Background jobs
	sched, err := buildScheduler(d)
	if err != nil {
		return err
	}
	sched.WithRetry(2, 30*time.Second).Start()
	defer sched.Stop()

	// HTTP
	h := handlers.New(d.service, d.cfg.Ranking.Size, d.metrics, log)
	router := api.NewRouter(d.cfg, h, d.metrics, log)
	server := api.New(d.cfg, log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	regions, _ := d.service.Regions()
	fmt.Fprintf(cmd.OutOrStdout(), "\n✅ Dashboard running on http://localhost:%s (%d regions)\n", d.cfg.Port, len(regions))
	fmt.Fprintln(cmd.OutOrStdout(), "\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
