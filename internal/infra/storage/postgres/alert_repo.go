package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vietddude/pulse/internal/sla"
)

// AlertRepo persists compliance alerts for after-the-fact review. The
// in-memory engines never read this back; it exists for operators and the
// status/purge CLI commands.
type AlertRepo struct {
	db *DB
}

// NewAlertRepo creates an alert history repository.
func NewAlertRepo(db *DB) *AlertRepo {
	return &AlertRepo{db: db}
}

// alertRow maps the sla_alerts table.
type alertRow struct {
	ID         string    `db:"id"`
	Endpoint   string    `db:"endpoint"`
	Severity   string    `db:"severity"`
	Violations []byte    `db:"violations"`
	Requests   int       `db:"requests"`
	FiredAt    time.Time `db:"fired_at"`
}

// Insert appends one alert to the history.
func (r *AlertRepo) Insert(ctx context.Context, a sla.Alert) error {
	violations, err := json.Marshal(a.Violations)
	if err != nil {
		return fmt.Errorf("failed to marshal violations: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO sla_alerts (id, endpoint, severity, violations, requests, fired_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.Endpoint, string(a.Severity), violations, a.Metrics.Requests, a.FiredAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// Recent returns the newest alerts, most recent first.
func (r *AlertRepo) Recent(ctx context.Context, limit int) ([]sla.Alert, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []alertRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, endpoint, severity, violations, requests, fired_at
		FROM sla_alerts
		ORDER BY fired_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}

	alerts := make([]sla.Alert, 0, len(rows))
	for _, row := range rows {
		a := sla.Alert{
			ID:       row.ID,
			Endpoint: row.Endpoint,
			Severity: sla.Severity(row.Severity),
			FiredAt:  row.FiredAt,
		}
		a.Metrics.Requests = row.Requests
		if err := json.Unmarshal(row.Violations, &a.Violations); err != nil {
			continue // Skip malformed rows
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}

// PurgeOlderThan deletes alerts fired before the cutoff and reports how many
// rows were removed.
func (r *AlertRepo) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sla_alerts WHERE fired_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge alerts: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}
