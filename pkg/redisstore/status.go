package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// StoreStatus mirrors the latest check outcome of an item so the status
// API can answer without touching postgres. Best effort: callers log and
// move on when it fails.
func (c *Client) StoreStatus(ctx context.Context, itemID int64, status int, latencyMs int64, message string, checkedAt time.Time) error {
	key := fmt.Sprintf("monitor:status:%v", itemID)

	return retry(ctx, 2, func() error {
		return c.rdb.HSet(ctx, key, map[string]any{
			"status":     status,
			"latency_ms": latencyMs,
			"message":    message,
			"checked_at": checkedAt.Unix(),
		}).Err()
	})
}

func (c *Client) GetStatus(ctx context.Context, itemID int64) (map[string]string, error) {
	key := fmt.Sprintf("monitor:status:%v", itemID)

	res, err := c.rdb.HGetAll(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	return res, err
}

func (c *Client) DelStatus(ctx context.Context, itemID int64) error {
	key := fmt.Sprintf("monitor:status:%v", itemID)

	return c.rdb.Del(ctx, key).Err()
}
