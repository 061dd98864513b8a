package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "krishi:chat:"

// Redis keeps one list per session so transcripts survive restarts and are
// shared between replicas.
type Redis struct {
	client   *redis.Client
	maxTurns int
	ttl      time.Duration
}

// DialRedis parses url, pings the server and returns a ready store.
func DialRedis(ctx context.Context, url string, maxTurns int, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedis(client, maxTurns, ttl), nil
}

func NewRedis(client *redis.Client, maxTurns int, ttl time.Duration) *Redis {
	return &Redis{client: client, maxTurns: maxTurns, ttl: ttl}
}

func (r *Redis) History(ctx context.Context, key string) ([]Turn, error) {
	raw, err := r.client.LRange(ctx, keyPrefix+key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("lrange: %w", err)
	}
	out := make([]Turn, 0, len(raw))
	for _, s := range raw {
		var t Turn
		if err := json.Unmarshal([]byte(s), &t); err != nil {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *Redis) Append(ctx context.Context, key string, t Turn) error {
	b, err := json.Marshal(t)
	if err != nil {
		return err
	}
	k := keyPrefix + key
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.RPush(ctx, k, b)
		if r.maxTurns > 0 {
			p.LTrim(ctx, k, int64(-r.maxTurns), -1)
		}
		if r.ttl > 0 {
			p.Expire(ctx, k, r.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("append turn: %w", err)
	}
	return nil
}

func (r *Redis) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, keyPrefix+key).Err()
}

func (r *Redis) Close() error { return r.client.Close() }
