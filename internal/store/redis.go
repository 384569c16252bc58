package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"AirPaper/internal/apperr"
	"AirPaper/internal/config"
)

// Redis is a Store backed by a Redis logical database.
type Redis struct {
	client *redis.Client
}

// NewRedis builds a client from cfg. No connection is made until the first
// command. WriteRetries bounds how often go-redis retries a failed command
// before the error is surfaced.
func NewRedis(cfg config.Store) *Redis {
	retries := cfg.WriteRetries
	if retries == 0 {
		// go-redis treats 0 as "use the default of 3"; -1 disables retries.
		retries = -1
	}
	return &Redis{client: redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.Namespace,
		MaxRetries:   retries,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	})}
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", apperr.ErrStoreUnreachable, key, err)
	}
	return nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, fmt.Errorf("%w: get %s: %v", apperr.ErrStoreUnreachable, key, err)
	}
	return v, true, nil
}

func (r *Redis) String() string {
	return fmt.Sprintf("redis{%s db=%d}", r.client.Options().Addr, r.client.Options().DB)
}

func (r *Redis) Close() error {
	return r.client.Close()
}

var _ Store = &Redis{}
