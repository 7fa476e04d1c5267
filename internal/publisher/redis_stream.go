// Package publisher pushes round-completed events onto Redis streams for
// downstream consumers that don't sit on the websocket.
package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/apex/internal/standings"
)

// Stream names
const (
	StandingsStream = "standings.rounds.f1"
	ResultsStream   = "results.sessions.f1"
)

// RedisStreamPublisher publishes fold events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a publisher from an existing client,
// typically the one backing the Redis session cache.
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// NewRedisPublisher creates a publisher with its own connection
func NewRedisPublisher(redisURL string) (*RedisStreamPublisher, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisStreamPublisher{
		client: client,
	}, nil
}

// Close closes the Redis connection
func (p *RedisStreamPublisher) Close() error {
	return p.client.Close()
}

// PublishStandings publishes one round's standings snapshot to the stream
func (p *RedisStreamPublisher) PublishStandings(ctx context.Context, season int, snap *standings.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: StandingsStream,
		Values: map[string]interface{}{
			"season":    season,
			"round":     snap.Round,
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}

// PublishResults publishes a completed session's results table to the stream
func (p *RedisStreamPublisher) PublishResults(ctx context.Context, table interface{}) error {
	data, err := json.Marshal(table)
	if err != nil {
		return err
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: ResultsStream,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
