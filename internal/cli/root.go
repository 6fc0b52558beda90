// Package cli provides the command-line interface for estatehub.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/raphaelgruber/estatehub/internal/config"
	"github.com/raphaelgruber/estatehub/internal/db"
	"github.com/raphaelgruber/estatehub/internal/models"
	"github.com/raphaelgruber/estatehub/internal/seed"
	"github.com/raphaelgruber/estatehub/internal/service"
	"github.com/raphaelgruber/estatehub/internal/state"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose   bool
	showStats bool

	// Global config, record store and service
	cfg        config.Config
	logger     *slog.Logger
	logCleanup func() error
	store      *db.Store
	svc        *service.Service

	// appState is what commands render from.
	appState *state.Store
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "estatehub",
	Short: "Real-estate marketplace in your terminal",
	Long: `Estatehub is a real-estate marketplace: browse and search listings,
publish your own and message listing owners.

The backend is simulated in-process over a local record store (SQLite by
default; memory, Redis and SurrealDB are available via ESTATEHUB_STORAGE).
Every account accepts the demo password.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for help commands
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}

		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		logger, logCleanup = config.SetupLogger(cfg.LogFile, level)
		slog.SetDefault(logger)

		ctx := cmd.Context()
		var err error
		store, err = db.Open(ctx, db.Options{
			Backend:     cfg.Storage,
			MemoryQuota: cfg.MemoryQuota,
			SQLitePath:  cfg.SQLitePath,
			RedisURL:    cfg.RedisURL,
			RedisPrefix: cfg.RedisPrefix,
			Surreal: db.Config{
				URL:       cfg.SurrealDBURL,
				Namespace: cfg.SurrealDBNamespace,
				Database:  cfg.SurrealDBDatabase,
				Username:  cfg.SurrealDBUser,
				Password:  cfg.SurrealDBPass,
				AuthLevel: cfg.SurrealDBAuthLevel,
			},
		}, logger)
		if err != nil {
			return fmt.Errorf("open record store: %w", err)
		}

		dataset, err := seed.Load()
		if err != nil {
			return fmt.Errorf("load seed data: %w", err)
		}

		svc = service.New(store, dataset, service.Options{
			Latency:      service.LatencyFromMillis(cfg.DelayMs),
			DemoPassword: cfg.DemoPassword,
			Logger:       logger,
		})

		appState = state.New()
		session, err := svc.CurrentSession(ctx)
		if err != nil {
			return fmt.Errorf("restore session: %w", err)
		}
		appState.SetSession(session)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if showStats && svc != nil {
			printStats(cmd.OutOrStdout(), svc.Metrics().Snapshot())
		}
		teardown()
	},
}

// teardown releases what PersistentPreRunE acquired.
func teardown() {
	if appState != nil {
		appState.Close()
		appState = nil
	}
	if store != nil {
		if err := store.Close(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close record store: %v\n", err)
		}
		store = nil
	}
	svc = nil
	if logCleanup != nil {
		_ = logCleanup()
		logCleanup = nil
	}
}

// requireSession returns the signed-in user or an error telling how to sign in.
func requireSession() (*models.User, error) {
	user := appState.Session()
	if user == nil {
		return nil, fmt.Errorf("not signed in; run 'estatehub login' first")
	}
	return user, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// Ctrl+C cancels an operation that is still waiting on the simulated backend.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		// PersistentPostRun does not run when a command fails.
		teardown()
	}
	return err
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&showStats, "stats", false, "print operation timings after the command")

	// Add subcommands
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(listingsCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(messagesCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
}
