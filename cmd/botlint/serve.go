package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"botlint/internal/api"
	"botlint/internal/paths"
)

var (
	servePort int
	serveHost string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Start the botlint HTTP API. POST /analyze accepts {"code": "..."} or a
text/plain body and answers with the HTML report, summary, advice and the
rewritten code. Runs are recorded when history is enabled.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from server.port)")
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default from server.host)")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger := app.logs.Server(app.root, os.Stderr)

	cfg := app.cfg.Server
	if serveHost != "" {
		cfg.Host = serveHost
	}
	if servePort != 0 {
		cfg.Port = servePort
	}
	cfg.SamplePath = paths.Resolve(app.root, cfg.SamplePath)

	eng, err := newEngine(engineOptions{withHistory: app.cfg.History.Enabled}, logger)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(cfg, eng, logger)

	serverErr := make(chan error, 1)
	go func() {
		fmt.Fprintf(cmd.ErrOrStderr(), "botlint HTTP API listening on http://%s\n", server.Addr())
		fmt.Fprintln(cmd.ErrOrStderr(), "Press Ctrl+C to stop")
		serverErr <- server.Start(ctx)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			logger.Error("Server error", "error", err.Error())
			return err
		}
	case <-ctx.Done():
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", "error", err.Error())
			return err
		}
		logger.Info("Server stopped gracefully")
	}

	return nil
}
