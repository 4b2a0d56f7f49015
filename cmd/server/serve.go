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

	"github.com/spf13/cobra"
	"github.com/warp/stockledger/api"
	"github.com/warp/stockledger/inventory"
	"go.uber.org/zap"
)

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Starts the HTTP API. On startup the ledger is reconciled against the
movement log (LEDGER_RECONCILE_ON_STARTUP) and optionally repaired
(LEDGER_REPAIR_ON_STARTUP). A background scheduler repeats the check every
RECONCILE_INTERVAL and repairs drift when RECONCILE_REPAIR is set.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "HTTP server port (overrides HTTP_PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort != "" {
		cfg.Server.HTTPPort = servePort
	}
	ctx := context.Background()

	store, closeStore, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	handler := api.NewHandler(store, newLedger(store), logger)

	reconciled := startupReconcile(ctx, handler.Reconciler)

	scheduler := api.NewReconciliationScheduler(handler.Reconciler, logger)
	scheduler.CheckInterval = cfg.Ledger.ReconcileInterval
	scheduler.Repair = cfg.Ledger.ReconcileRepair
	scheduler.SkipInitialRun = reconciled
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.HTTPPort),
		Handler:      api.NewRouter(handler, cfg.Server.CORSOrigins),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", server.Addr),
			zap.String("env", cfg.Server.AppEnv),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// startupReconcile runs the configured startup check or repair and reports
// whether it completed.
func startupReconcile(ctx context.Context, rec *inventory.Reconciler) bool {
	var err error
	switch {
	case cfg.Ledger.RepairOnStartup:
		_, err = rec.Repair(ctx)
	case cfg.Ledger.ReconcileOnStartup:
		_, err = rec.Check(ctx)
	default:
		return false
	}
	if err != nil {
		logger.Warn("startup reconciliation failed", zap.Error(err))
		return false
	}
	return true
}
