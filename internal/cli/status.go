package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vietddude/pulse/internal/core/config"
	"github.com/vietddude/pulse/internal/infra/redis"
	"github.com/vietddude/pulse/internal/infra/storage/postgres"
	"github.com/vietddude/pulse/internal/sla"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent SLA alerts from the history store",
	Run:   runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 20, "maximum number of alerts to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	alerts, err := fetchAlerts(ctx, cfg, statusLimit)
	if err != nil {
		slog.Error("Failed to fetch alerts", "error", err)
		os.Exit(1)
	}

	renderAlerts(os.Stdout, alerts)
}

// fetchAlerts reads alert history from Postgres when a database is configured,
// otherwise from the bounded recent-alert list in Redis.
func fetchAlerts(ctx context.Context, cfg *config.AppConfig, limit int) ([]sla.Alert, error) {
	if cfg.Database.URL != "" {
		db, err := postgres.NewDB(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		defer func() {
			_ = db.Close()
		}()
		return postgres.NewAlertRepo(db).Recent(ctx, limit)
	}

	if cfg.Redis.URL != "" {
		client, err := redis.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		defer func() {
			_ = client.Close()
		}()
		return client.RecentAlerts(ctx, limit)
	}

	return nil, fmt.Errorf("no database or redis configured; alert history is unavailable")
}

func renderAlerts(out io.Writer, alerts []sla.Alert) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.Debug)
	_, _ = fmt.Fprintln(w, "FIRED\tENDPOINT\tSEVERITY\tVIOLATIONS\tREQUESTS")

	for _, a := range alerts {
		kinds := ""
		for i, v := range a.Violations {
			if i > 0 {
				kinds += ","
			}
			kinds += v.Kind
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			a.FiredAt.Format("2006-01-02 15:04:05"), a.Endpoint, a.Severity, kinds, a.Metrics.Requests)
	}

	_ = w.Flush()

	if len(alerts) == 0 {
		_, _ = fmt.Fprintln(out, "No alerts recorded.")
	}
}
