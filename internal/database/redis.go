package database

import (
	"context"
	"fmt"
	"time"

	"github.com/UnicornIn/distribuidores/internal/config"
	"github.com/redis/go-redis/v9"
)

// redisTimeout acota cada operación individual contra Redis
const redisTimeout = 5 * time.Second

// Redis representa la conexión a Redis. Respaldada por el caché del
// catálogo y los contadores de rate limiting
type Redis struct {
	*redis.Client
}

// ConnectRedis establece la conexión a Redis
func ConnectRedis(cfg *config.Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("error pinging Redis: %w", err)
	}

	return &Redis{client}, nil
}

// Close cierra la conexión a Redis
func (r *Redis) Close() error {
	return r.Client.Close()
}

// SetWithTTL establece un valor con tiempo de expiración
func (r *Redis) SetWithTTL(key string, value interface{}, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	return r.Client.Set(ctx, key, value, ttl).Err()
}

// Get obtiene un valor
func (r *Redis) Get(key string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	return r.Client.Get(ctx, key).Result()
}

// Delete elimina una clave
func (r *Redis) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	return r.Client.Del(ctx, key).Err()
}

// Incr incrementa un contador
func (r *Redis) Incr(key string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	return r.Client.Incr(ctx, key).Result()
}

// Expire establece el tiempo de expiración de una clave
func (r *Redis) Expire(key string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	return r.Client.Expire(ctx, key, ttl).Err()
}
