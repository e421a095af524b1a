package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vietddude/pulse/internal/core/config"
	"github.com/vietddude/pulse/internal/infra/storage/postgres"
)

var purgeOlderThan string

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete old SLA alerts from the history store",
	Run:   runPurge,
}

func init() {
	purgeCmd.Flags().StringVar(&purgeOlderThan, "older-than", "720h", "delete alerts older than this duration (e.g. 168h)")
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) {
	age, err := time.ParseDuration(purgeOlderThan)
	if err != nil {
		slog.Error("Invalid --older-than duration", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if cfg.Database.URL == "" {
		slog.Error("No database configured; nothing to purge")
		os.Exit(1)
	}

	ctx := context.Background()
	db, err := postgres.NewDB(ctx, cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = db.Close()
	}()

	n, err := postgres.NewAlertRepo(db).PurgeOlderThan(ctx, time.Now().Add(-age))
	if err != nil {
		slog.Error("Failed to purge alerts", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Deleted %d alerts older than %s\n", n, age)
}
