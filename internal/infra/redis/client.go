package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vietddude/pulse/internal/sla"
)

// recentAlertsMax bounds the recent-alert list kept in Redis.
const recentAlertsMax = 100

// Client wraps Redis operations for the alert pipeline.
type Client struct {
	rdb *redis.Client
}

// Config holds Redis connection configuration.
type Config struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
}

// NewClient creates a new Redis client.
func NewClient(cfg Config) (*Client, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	if cfg.Password != "" {
		opts.Password = cfg.Password
	}

	rdb := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Health reports whether the Redis connection is alive.
func (c *Client) Health(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Key helpers
func alertChannel(severity sla.Severity) string {
	return fmt.Sprintf("pulse:alerts:%s", severity)
}

const recentAlertsKey = "pulse:alerts:recent"

// PublishAlert publishes the alert on its severity channel and records it in
// the bounded recent-alert list.
func (c *Client) PublishAlert(ctx context.Context, a sla.Alert) error {
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	if err := c.rdb.Publish(ctx, alertChannel(a.Severity), payload).Err(); err != nil {
		return fmt.Errorf("publish failed: %w", err)
	}

	pipe := c.rdb.TxPipeline()
	pipe.LPush(ctx, recentAlertsKey, payload)
	pipe.LTrim(ctx, recentAlertsKey, 0, recentAlertsMax-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("recent-list update failed: %w", err)
	}
	return nil
}

// RecentAlerts returns up to n most recent alerts, newest first.
func (c *Client) RecentAlerts(ctx context.Context, n int) ([]sla.Alert, error) {
	if n <= 0 || n > recentAlertsMax {
		n = recentAlertsMax
	}

	raw, err := c.rdb.LRange(ctx, recentAlertsKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange failed: %w", err)
	}

	alerts := make([]sla.Alert, 0, len(raw))
	for _, item := range raw {
		var a sla.Alert
		if err := json.Unmarshal([]byte(item), &a); err != nil {
			continue // Skip malformed entries
		}
		alerts = append(alerts, a)
	}
	return alerts, nil
}
