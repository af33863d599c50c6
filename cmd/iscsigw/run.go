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

	"github.com/cuemby/iscsigw/pkg/events"
	"github.com/cuemby/iscsigw/pkg/log"
	"github.com/cuemby/iscsigw/pkg/metrics"
	"github.com/cuemby/iscsigw/pkg/reconciler"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the reconciler and the metrics server",
	Long: `Run the dashboard reconciler in the foreground. Metrics and health
endpoints are served on metrics_addr:

  /metrics  Prometheus metrics
  /health   component health
  /ready    readiness
  /live     liveness`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := log.WithComponent("run")

		metrics.SetVersion(Version)

		broker := events.NewBroker()
		broker.Start()
		defer broker.Stop()
		sub := broker.Subscribe()
		defer broker.Unsubscribe(sub)
		go countEvents(sub)

		e, err := openEnv(broker)
		if err != nil {
			metrics.MarkDown(metrics.ComponentStore, err.Error())
			return err
		}
		defer e.Close()
		metrics.MarkHealthy(metrics.ComponentStore, cfg.DataDir)
		metrics.MarkHealthy(metrics.ComponentCommander, "local")

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.HandleFunc("/health", metrics.HealthHandler())
		mux.HandleFunc("/ready", metrics.ReadyHandler())
		mux.HandleFunc("/live", metrics.LivenessHandler())
		server := &http.Server{Addr: cfg.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		errCh := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()

		recon := reconciler.NewReconciler(e.store, e.service, e.syncer, cfg.ReconcileInterval)
		recon.Start()

		logger.Info().
			Str("data_dir", cfg.DataDir).
			Str("metrics_addr", cfg.MetricsAddr).
			Dur("interval", cfg.ReconcileInterval).
			Msg("iscsigw running")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		var runErr error
		select {
		case sig := <-sigCh:
			logger.Info().Str("signal", sig.String()).Msg("shutting down")
		case runErr = <-errCh:
			logger.Error().Err(runErr).Msg("shutting down")
		}

		recon.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			logger.Warn().Err(err).Msg("metrics server shutdown")
		}
		return runErr
	},
}

// countEvents returns once sub is unsubscribed
func countEvents(sub events.Subscriber) {
	for event := range sub {
		metrics.EventsTotal.WithLabelValues(string(event.Type)).Inc()
	}
}
