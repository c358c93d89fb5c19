package main

// Run the API server:
//   go run ./cmd/api            (same as `serve`)
//   go run ./cmd/api analyze "high fever and headache"

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"triage-backend/internal/analyses"
	"triage-backend/internal/bootstrap"
	"triage-backend/internal/shared/config"
	"triage-backend/internal/shared/server"
	"triage-backend/internal/shared/telemetry"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "api",
		Short:         "Symptom triage API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Start the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "analyze [text]",
			Short: "Run the triage pipeline once and print the JSON response",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				app, err := build(cmd.Context())
				if err != nil {
					return err
				}
				defer app.Close()
				return runAnalyze(cmd.Context(), app.Service, args[0], cmd.OutOrStdout())
			},
		},
	)
	return root
}

func build(ctx context.Context) (*bootstrap.App, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := config.Load()
	if err != nil {
		telemetry.Error("config.invalid", map[string]any{"error": err.Error()})
		return nil, err
	}
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)

	app, err := bootstrap.Build(ctx, cfg, bootstrap.Options{})
	if err != nil {
		telemetry.Error("bootstrap.failed", map[string]any{"error": err.Error()})
		return nil, err
	}
	return app, nil
}

func runServe(ctx context.Context) error {
	app, err := build(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			telemetry.Warn("server.release_failed", map[string]any{"error": err.Error()})
		}
	}()

	srv := &http.Server{
		Addr:              server.Addr(app.Config.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		telemetry.Info("server.start", map[string]any{"addr": srv.Addr})
		errCh <- srv.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		telemetry.Error("server.error", map[string]any{"error": err.Error()})
		return err
	case sig := <-stop:
		telemetry.Info("server.shutdown", map[string]any{"signal": sig.String()})
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runAnalyze(ctx context.Context, svc *analyses.Service, text string, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var payload any
	result, err := svc.Analyze(ctx, text)
	switch {
	case errors.Is(err, analyses.ErrNoSymptoms):
		payload = analyses.NoSymptoms{Success: false, Message: analyses.NoSymptomsMessage}
	case err != nil:
		return fmt.Errorf("analyze: %w", err)
	default:
		payload = result
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
