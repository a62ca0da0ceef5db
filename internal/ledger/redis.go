package ledger

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Redis keeps one set per user session so the ledger survives worker restarts.
type Redis struct {
	client *redis.Client
	key    string
}

func NewRedis(client *redis.Client, prefix, userID string) *Redis {
	return &Redis{client: client, key: fmt.Sprintf("%s:ledger:%s", prefix, userID)}
}

func (r *Redis) Has(ctx context.Context, key string) (bool, error) {
	ok, err := r.client.SIsMember(ctx, r.key, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check ledger: %w", err)
	}
	return ok, nil
}

func (r *Redis) Add(ctx context.Context, key string) error {
	if err := r.client.SAdd(ctx, r.key, key).Err(); err != nil {
		return fmt.Errorf("failed to add ledger key: %w", err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear ledger: %w", err)
	}
	return nil
}

func (r *Redis) Len(ctx context.Context) (int, error) {
	n, err := r.client.SCard(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count ledger: %w", err)
	}
	return int(n), nil
}
