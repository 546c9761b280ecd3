package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"poincare-hq/poincare/pkg/audit/retention"
	"poincare-hq/poincare/pkg/config"
	"poincare-hq/poincare/pkg/logging"
)

var runFlags struct {
	watch  bool
	dryRun bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run in long-lived mode: metrics, config watch, retention",
	Long: `Run poincare as a long-lived process.

In this mode poincare serves Prometheus metrics for the logging chain,
optionally watches the configuration file for changes, and enforces the
audit ledger retention policy on its cron schedule.

Examples:
  # Run with the default configuration
  poincare run

  # Reload logging configuration on file change
  poincare run --watch

  # Validate configuration without starting
  poincare run --dry-run`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runFlags.watch, "watch", false, "reload configuration on file change")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate configuration without starting")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.dryRun {
		fmt.Println("Configuration valid")
		return nil
	}

	var metrics *logging.Metrics
	registry := prometheus.NewRegistry()
	if cfg.Metrics.Enabled {
		metrics = logging.NewMetrics(cfg.Metrics.Namespace, registry)
	}

	logger, err := buildLogger(cfg, metrics)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("poincare starting",
		"version", Version,
		"config", cfgFile,
		"metrics", cfg.Metrics.Enabled,
		"audit", cfg.Audit.Enabled,
	)

	// Metrics endpoint.
	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Listen,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("metrics endpoint listening",
				"address", cfg.Metrics.Listen,
				"path", cfg.Metrics.Path,
			)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics endpoint failed", "error", err.Error())
			}
		}()
	}

	// Retention scheduler over the run ledger.
	store, err := openAuditStorage(cfg, logger)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()

		pruner := retention.NewPruner(store, &retention.Config{
			RetentionDays: cfg.Audit.Retention.Days,
			MaxRecords:    int64(cfg.Audit.Retention.MaxRecords),
			PruneSchedule: cfg.Audit.Retention.PruneSchedule,
		}, logger)
		if err := pruner.Start(ctx); err != nil {
			return err
		}
		defer pruner.Stop()
	}

	// Configuration watcher. A reload applies the logging security
	// toggle to the live logger; structural changes (backend chain,
	// listeners, retention) need a restart.
	if runFlags.watch {
		watcher, err := config.NewWatcher(cfgFile, 0)
		if err != nil {
			return err
		}
		defer watcher.Stop()

		var reloads atomic.Int64
		go func() {
			err := watcher.Watch(ctx, func(updated *config.Config) {
				applyReload(logger, updated)
				reloads.Add(1)
				logger.Info("configuration reloaded",
					"path", cfgFile,
					"reload_count", reloads.Load(),
					"security_enabled", updated.Logging.SecurityEnabled(),
				)
			}, func(err error) {
				logger.Warning("configuration reload failed, keeping previous",
					"path", cfgFile,
					"error", err.Error(),
				)
			})
			if err != nil {
				logger.Error("configuration watcher stopped", "error", err.Error())
			}
		}()

		logger.Info("watching configuration file", "path", cfgFile)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warning("metrics endpoint shutdown failed", "error", err.Error())
		}
	}

	return nil
}

// applyReload pushes the reloadable parts of an updated configuration
// into the running process. Today that is the logging security toggle;
// everything else is fixed at startup.
func applyReload(logger *logging.Logger, updated *config.Config) {
	logger.SetSecurity(updated.Logging.SecurityEnabled())
}
