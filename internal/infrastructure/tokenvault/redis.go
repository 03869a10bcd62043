package tokenvault

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
	"github.com/DanielPopoola/racing-academy-payments/internal/config"
	"github.com/DanielPopoola/racing-academy-payments/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "academy:token:"

// NewRedisClient returns a connected client or an error if Redis does not answer a ping.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

// RedisVault keeps one gateway token per customer. Entries expire after ttl
// so a card that stops being used is eventually forgotten.
type RedisVault struct {
	client *redis.Client
	ttl    time.Duration
}

var _ application.TokenVault = (*RedisVault)(nil)

func NewRedisVault(client *redis.Client, ttl time.Duration) *RedisVault {
	return &RedisVault{client: client, ttl: ttl}
}

func (v *RedisVault) Get(ctx context.Context, customerID string) (*domain.PaymentToken, error) {
	raw, err := v.client.Get(ctx, key(customerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, application.ErrTokenNotFound
		}
		return nil, fmt.Errorf("redis get token for %s: %w", customerID, err)
	}

	var token domain.PaymentToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, fmt.Errorf("unmarshal token for %s: %w", customerID, err)
	}
	return &token, nil
}

func (v *RedisVault) Put(ctx context.Context, token domain.PaymentToken) error {
	if token.CustomerID == "" || token.TokenID == "" {
		return domain.NewMissingRequiredFieldError("token customer and id")
	}

	payload, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token for %s: %w", token.CustomerID, err)
	}

	if err := v.client.Set(ctx, key(token.CustomerID), payload, v.ttl).Err(); err != nil {
		return fmt.Errorf("redis set token for %s: %w", token.CustomerID, err)
	}
	return nil
}

func (v *RedisVault) Forget(ctx context.Context, customerID string) error {
	if err := v.client.Del(ctx, key(customerID)).Err(); err != nil {
		return fmt.Errorf("redis delete token for %s: %w", customerID, err)
	}
	return nil
}

func key(customerID string) string {
	return keyPrefix + customerID
}
