package alert

import (
	"context"

	"github.com/vietddude/pulse/internal/infra/storage/postgres"
	"github.com/vietddude/pulse/internal/sla"
)

// PostgresSink appends alerts to the durable history table.
type PostgresSink struct {
	repo *postgres.AlertRepo
}

// NewPostgresSink creates a Postgres-backed sink.
func NewPostgresSink(repo *postgres.AlertRepo) *PostgresSink {
	return &PostgresSink{repo: repo}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Deliver(ctx context.Context, a sla.Alert) error {
	return s.repo.Insert(ctx, a)
}
