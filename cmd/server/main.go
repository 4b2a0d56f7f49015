/*
main.go - Application entry point

PURPOSE:
  Initializes the stock ledger: loads configuration, builds the logger,
  opens the snapshot slot and dispatches to a subcommand.

COMMANDS:
  serve       Run the HTTP API (default when no subcommand is given)
  adjust      Apply one stock adjustment and print the new quantity
  reconcile   Compare snapshot with movement replay; --repair to fix drift
  export      Print the whole snapshot as JSON

GLOBAL FLAGS:
  --backend   Storage backend: sqlite | file | redis | memory
  --path      SQLite database or JSON file path
  --key       Slot key (SQLite row / Redis key)

ENVIRONMENT:
  Read from the process environment and an optional .env file.
  See config/config.go for keys. Flags override environment values.

EXAMPLES:
  # Run with the default SQLite file
  ./stockledger serve --port=3000

  # Inspect a JSON snapshot file
  ./stockledger export --backend=file --path=./data/inventory.json

  # Repair drift left by an interrupted write
  ./stockledger reconcile --repair

SEE ALSO:
  - api/server.go: Router configuration
  - inventory/ledger.go: Stock adjustments
  - docstore/store.go: Snapshot store
*/
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/warp/stockledger/config"
	"github.com/warp/stockledger/docstore"
	"github.com/warp/stockledger/inventory"
	"github.com/warp/stockledger/logging"
	"github.com/warp/stockledger/metrics"
	"github.com/warp/stockledger/store/file"
	"github.com/warp/stockledger/store/memory"
	"github.com/warp/stockledger/store/redis"
	"github.com/warp/stockledger/store/sqlite"
	"go.uber.org/zap"
)

var (
	cfg    *config.Config
	logger *zap.Logger

	flagBackend string
	flagPath    string
	flagKey     string
)

var rootCmd = &cobra.Command{
	Use:           "stockledger",
	Short:         "Inventory ledger over a single-snapshot document store",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg = config.LoadEnv()
		if flagBackend != "" {
			cfg.Storage.Backend = flagBackend
		}
		if flagPath != "" {
			cfg.Storage.Path = flagPath
		}
		if flagKey != "" {
			cfg.Storage.Key = flagKey
		}

		var err error
		logger, err = logging.New(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	RunE: runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBackend, "backend", "", "storage backend (sqlite, file, redis, memory)")
	rootCmd.PersistentFlags().StringVar(&flagPath, "path", "", "sqlite database or JSON file path")
	rootCmd.PersistentFlags().StringVar(&flagKey, "key", "", "snapshot key")
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	err := rootCmd.Execute()
	if logger != nil {
		_ = logger.Sync()
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openStore opens the configured slot and wraps it in a document store.
// The returned close function releases the slot.
func openStore(ctx context.Context) (*docstore.Store, func(), error) {
	var (
		slot    docstore.Slot
		closeFn = func() {}
	)

	switch cfg.Storage.Backend {
	case config.BackendSQLite:
		s, err := sqlite.New(cfg.Storage.Path, cfg.Storage.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		slot, closeFn = s, func() { s.Close() }
	case config.BackendFile:
		s, err := file.New(cfg.Storage.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open snapshot file: %w", err)
		}
		slot = s
	case config.BackendRedis:
		s, err := redis.New(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Storage.Key,
		})
		if err != nil {
			return nil, nil, err
		}
		slot, closeFn = s, func() { s.Close() }
	case config.BackendMemory:
		slot = memory.New()
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	blobs := docstore.NewBlobStore(slot, inventory.SeedSnapshot)
	blobs.OnSave = metrics.ObserveSave

	logger.Info("storage opened",
		zap.String("backend", slot.Name()),
		zap.String("path", cfg.Storage.Path),
	)
	return docstore.New(blobs), closeFn, nil
}

func newLedger(store *docstore.Store) *inventory.Ledger {
	return inventory.NewLedger(store,
		inventory.WithAllowNegative(cfg.Ledger.AllowNegative),
		inventory.WithLogger(logger),
	)
}
