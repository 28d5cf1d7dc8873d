package middleware

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"onethy/config"
	"onethy/utils"
)

// TenantRateLimiter caps requests per tenant per minute. Unauthenticated
// requests are keyed by client IP.
func TenantRateLimiter(max int, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			if tenant, ok := CurrentTenant(c); ok {
				return fmt.Sprintf("ratelimit:tenant:%d", tenant.ID)
			}
			return "ratelimit:ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			data := map[string]interface{}{
				"endpoint":   c.Path(),
				"ip":         c.IP(),
				"user_agent": c.Get("User-Agent"),
			}
			if tenant, ok := CurrentTenant(c); ok {
				data["tenant_id"] = tenant.ID
				data["user_id"] = tenant.UserID
			}
			utils.LogEvent("rate_limit_hit", data)

			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests. Please wait before trying again.",
			})
		},
		Storage: storage,
	})
}

// RateLimitStorage returns Redis storage when enabled, nil (in memory) otherwise.
func RateLimitStorage(cfg config.RedisConfig) fiber.Storage {
	if cfg.Enabled {
		return NewRedisStorage(cfg)
	}
	return nil
}

// RedisStorage implements fiber.Storage for Redis
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(cfg config.RedisConfig) *RedisStorage {
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Get returns nil, nil for missing keys as fiber.Storage requires.
func (r *RedisStorage) Get(key string) ([]byte, error) {
	val, err := r.client.Get(context.Background(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return r.client.Set(context.Background(), key, val, exp).Err()
}

func (r *RedisStorage) Delete(key string) error {
	return r.client.Del(context.Background(), key).Err()
}

func (r *RedisStorage) Reset() error {
	return r.client.FlushDB(context.Background()).Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}
