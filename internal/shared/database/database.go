package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"mergington/internal/shared/config"

	"github.com/redis/go-redis/v9"
)

// DB holds the optional Redis connection backing the registry
type DB struct {
	Redis *redis.Client
}

// InitDB initializes connections required by the configured registry backend.
// The memory backend needs none.
func InitDB(cfg *config.Config) (*DB, error) {
	if !cfg.UsesRedis() {
		return &DB{}, nil
	}

	rdb, err := initRedis(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	return &DB{
		Redis: rdb,
	}, nil
}

// initRedis initializes Redis connection
func initRedis(cfg *config.Config) (*redis.Client, error) {
	opts := &redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,

		// Connection pool settings
		PoolSize:     10,
		MinIdleConns: 5,

		// Timeouts
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}

	rdb := redis.NewClient(opts)

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Println("✅ Redis connected successfully")
	return rdb, nil
}

// Close closes all database connections
func (db *DB) Close() error {
	if db == nil || db.Redis == nil {
		return nil
	}

	if err := db.Redis.Close(); err != nil {
		return fmt.Errorf("failed to close Redis: %w", err)
	}

	log.Println("✅ Redis connection closed")
	return nil
}

// HealthCheck performs health checks on all database connections
func (db *DB) HealthCheck(ctx context.Context) error {
	if db == nil || db.Redis == nil {
		return nil
	}

	if err := db.Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	return nil
}

// GetRedis returns the Redis client, nil for the memory backend
func (db *DB) GetRedis() *redis.Client {
	if db == nil {
		return nil
	}
	return db.Redis
}
