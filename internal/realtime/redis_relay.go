package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anonto42/nano-social/backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const channelPrefix = "notifications:"

// Channel is the pub/sub channel carrying pushes for userID
func Channel(userID string) string {
	return channelPrefix + userID
}

// DialRedis parses a redis:// URL and checks the connection
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// RedisRelay fans pushes out to every instance sharing a Redis server. Emit
// publishes; Run subscribes and delivers to the local hub. Publishing to a
// channel nobody listens on loses the push, same as the local hub.
type RedisRelay struct {
	client *redis.Client
	hub    *Hub
	ready  chan struct{}
}

func NewRedisRelay(client *redis.Client, hub *Hub) *RedisRelay {
	return &RedisRelay{client: client, hub: hub, ready: make(chan struct{})}
}

// Emit publishes the frame on the recipient's channel
func (r *RedisRelay) Emit(ctx context.Context, userID, event string, payload any) error {
	data, err := json.Marshal(Frame{Event: event, Data: payload})
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, Channel(userID), data).Err()
}

// Ready is closed once Run holds an active subscription
func (r *RedisRelay) Ready() <-chan struct{} {
	return r.ready
}

// Run delivers published frames to local clients until ctx is done
func (r *RedisRelay) Run(ctx context.Context) error {
	ps := r.client.PSubscribe(ctx, channelPrefix+"*")
	defer ps.Close()

	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe %s*: %w", channelPrefix, err)
	}
	close(r.ready)

	l := logger.L()
	l.Info().Str("pattern", channelPrefix+"*").Msg("redis relay subscribed")

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			userID := strings.TrimPrefix(msg.Channel, channelPrefix)
			r.hub.Deliver(userID, []byte(msg.Payload))
		}
	}
}

func (r *RedisRelay) Close() error {
	return r.client.Close()
}
