// internal/adapters/out/guest/redis_kv.go
package guest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisKV implements guest.KV on Redis. Every write refreshes the key TTL
// so abandoned guest carts expire on their own.
type RedisKV struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// NewRedisClient opens a client and pings it.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis %s: %w", cfg.Addr, err)
	}
	log.Printf("✅ Redis connected (addr: %s, db: %d)", cfg.Addr, cfg.DB)
	return client, nil
}

func NewRedisKV(client redis.UniversalClient, prefix string, ttl time.Duration) *RedisKV {
	return &RedisKV{client: client, prefix: strings.TrimSpace(prefix), ttl: ttl}
}

func (r *RedisKV) key(k string) string { return r.prefix + k }

func (r *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	if r == nil || r.client == nil {
		return "", false, errors.New("redis_kv: client is nil")
	}
	v, err := r.client.Get(ctx, r.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *RedisKV) Set(ctx context.Context, key, value string) error {
	if r == nil || r.client == nil {
		return errors.New("redis_kv: client is nil")
	}
	return r.client.Set(ctx, r.key(key), value, r.ttl).Err()
}

func (r *RedisKV) Delete(ctx context.Context, key string) error {
	if r == nil || r.client == nil {
		return errors.New("redis_kv: client is nil")
	}
	return r.client.Del(ctx, r.key(key)).Err()
}
