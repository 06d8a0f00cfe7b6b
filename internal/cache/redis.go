// Package cache publishes finished rounds onto a Redis queue. The historian
// service drains the queue into long-term storage on its own schedule, so a
// slow database never sits between a round ending and its scores going out.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/typerace/server/internal/game"
)

// DefaultQueueName is the Redis list the historian consumes.
const DefaultQueueName = "typerace_rounds"

// Publisher pushes round records onto a Redis list.
type Publisher struct {
	rdb   *redis.Client
	queue string
}

var _ game.TopScoreSink = (*Publisher)(nil)

// Connect dials Redis and verifies the connection before returning a
// publisher bound to the given queue.
func Connect(addr string, db int, queue string) (*Publisher, error) {
	if queue == "" {
		queue = DefaultQueueName
	}
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return &Publisher{rdb: rdb, queue: queue}, nil
}

// Record implements game.TopScoreSink: serialize and RPush, nothing more.
func (p *Publisher) Record(ctx context.Context, rec game.RoundRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal round record: %w", err)
	}
	if err := p.rdb.RPush(ctx, p.queue, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", p.queue, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}
