package alert

import (
	"context"

	redisclient "github.com/vietddude/pulse/internal/infra/redis"
	"github.com/vietddude/pulse/internal/sla"
)

// RedisSink publishes alerts on a Redis channel so external consumers
// (pagers, chat bridges) can subscribe, and keeps a bounded recent list.
type RedisSink struct {
	client *redisclient.Client
}

// NewRedisSink creates a Redis-backed sink.
func NewRedisSink(client *redisclient.Client) *RedisSink {
	return &RedisSink{client: client}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Deliver(ctx context.Context, a sla.Alert) error {
	return s.client.PublishAlert(ctx, a)
}
