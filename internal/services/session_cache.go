package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"ticketing-app/models"
)

// SessionCache keeps the gateway payment credentials for an order
// while the payment window is open. Sessions are ephemeral by design;
// a cache miss only means the buyer has to restart checkout.
type SessionCache struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewSessionCache(redisClient *redis.Client, ttl time.Duration) *SessionCache {
	if ttl == 0 {
		ttl = 10 * time.Minute
	}
	return &SessionCache{redis: redisClient, ttl: ttl}
}

func sessionKey(orderID string) string {
	return fmt.Sprintf("payment:%s", orderID)
}

func (c *SessionCache) Put(ctx context.Context, orderID string, sess *models.PaymentSession) error {
	key := sessionKey(orderID)

	if err := c.redis.HSet(ctx, key,
		"token", sess.Token,
		"redirect_url", sess.RedirectURL,
		"reference", sess.Reference,
	).Err(); err != nil {
		return fmt.Errorf("session cache: hset: %w", err)
	}

	if err := c.redis.Expire(ctx, key, c.ttl).Err(); err != nil {
		return fmt.Errorf("session cache: expire: %w", err)
	}
	return nil
}

func (c *SessionCache) Get(ctx context.Context, orderID string) (*models.PaymentSession, error) {
	data, err := c.redis.HGetAll(ctx, sessionKey(orderID)).Result()
	if err != nil {
		return nil, fmt.Errorf("session cache: hgetall: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	return &models.PaymentSession{
		Token:       data["token"],
		RedirectURL: data["redirect_url"],
		Reference:   data["reference"],
	}, nil
}
