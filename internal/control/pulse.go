// Package control wires the engines, sinks, and servers into one
// application lifecycle.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/vietddude/pulse/internal/alert"
	"github.com/vietddude/pulse/internal/core/config"
	redisclient "github.com/vietddude/pulse/internal/infra/redis"
	"github.com/vietddude/pulse/internal/infra/storage/postgres"
	"github.com/vietddude/pulse/internal/retry"
	"github.com/vietddude/pulse/internal/server"
	"github.com/vietddude/pulse/internal/sla"
)

// Pulse is the main application struct that manages the service lifecycle.
type Pulse struct {
	cfg        Config
	engine     *sla.Engine
	sweeper    *sla.Sweeper
	dispatcher *alert.Dispatcher
	server     *server.Server
	db         *postgres.DB
	redis      *redisclient.Client
	cancel     context.CancelFunc
}

// Config holds the application configuration.
type Config struct {
	Port          int
	SweepInterval time.Duration
	Thresholds    []sla.Threshold
	Redis         redisclient.Config
	Database      postgres.Config
}

// FromApp converts loaded file configuration into wiring configuration.
func FromApp(cfg *config.AppConfig) (Config, error) {
	interval, thresholds, err := cfg.SLA.Resolve()
	if err != nil {
		return Config{}, err
	}
	return Config{
		Port:          cfg.Server.Port,
		SweepInterval: interval,
		Thresholds:    thresholds,
		Redis:         cfg.Redis,
		Database:      cfg.Database,
	}, nil
}

// NewPulse creates a new Pulse instance with all dependencies initialized.
// Postgres and Redis are optional: with neither configured, alerts go to the
// log only.
func NewPulse(cfg Config) (*Pulse, error) {
	engine := sla.NewEngine()
	sinks := []alert.Sink{alert.LogSink{}}

	var db *postgres.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		// Run migrations
		if err := goose.SetDialect("postgres"); err != nil {
			return nil, err
		}
		if err := goose.Up(db.DB.DB, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		sinks = append(sinks, alert.NewPostgresSink(postgres.NewAlertRepo(db)))
		slog.Info("Alert history enabled", "store", "postgres")
	}

	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		sinks = append(sinks, alert.NewRedisSink(redisClient))
		slog.Info("Alert publication enabled", "store", "redis")
	}

	dispatcher := alert.NewDispatcher(sinks, retry.ExternalPolicy)

	srv := server.NewServer(engine, cfg.Thresholds, cfg.Port)
	if db != nil {
		srv.AddDependency("postgres", db.Health)
	}
	if redisClient != nil {
		srv.AddDependency("redis", redisClient.Health)
	}

	p := &Pulse{
		cfg:        cfg,
		engine:     engine,
		dispatcher: dispatcher,
		server:     srv,
		db:         db,
		redis:      redisClient,
	}
	return p, nil
}

// Engine exposes the metrics engine so the routing layer can install the
// recording middleware.
func (p *Pulse) Engine() *sla.Engine {
	return p.engine
}

// Start launches the ops server and the compliance sweeper.
func (p *Pulse) Start(ctx context.Context) error {
	ctx, p.cancel = context.WithCancel(ctx)

	p.sweeper = sla.NewSweeper(p.engine, p.cfg.Thresholds, p.cfg.SweepInterval, func(a sla.Alert) {
		p.dispatcher.Dispatch(ctx, a)
	})
	go p.sweeper.Start(ctx)

	go func() {
		slog.Info("Ops server listening", "port", p.cfg.Port)
		if err := p.server.Start(); err != nil && ctx.Err() == nil {
			slog.Error("Ops server stopped", "error", err)
		}
	}()

	return nil
}

// Stop shuts the service down gracefully.
func (p *Pulse) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	if err := p.server.Stop(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if p.redis != nil {
		if err := p.redis.Close(); err != nil {
			slog.Warn("Redis close failed", "error", err)
		}
	}
	if p.db != nil {
		if err := p.db.Close(); err != nil {
			slog.Warn("Database close failed", "error", err)
		}
	}
	return nil
}
