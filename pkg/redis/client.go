package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"AssistantHubPlatform/pkg/connection"
)

// Client представляет подключение к Redis
type Client struct {
	Client *redis.Client
}

// Config представляет конфигурацию Redis
type Config struct {
	Addr     string
	Password string
	DB       int
	// Пул соединений
	PoolSize    int
	MinIdleConn int
	// Повторные попытки подключения
	MaxRetries    int
	RetryInterval time.Duration
	// Период проверки простаивающих соединений
	HealthCheck time.Duration
}

// NewConfig создает конфигурацию по умолчанию
func NewConfig() *Config {
	return &Config{
		Addr:          "localhost:6379",
		Password:      "",
		DB:            0,
		PoolSize:      4,
		MinIdleConn:   0,
		MaxRetries:    2,
		RetryInterval: 500 * time.Millisecond,
		HealthCheck:   30 * time.Second,
	}
}

// Connect устанавливает подключение к Redis с retry логикой
func Connect(ctx context.Context, config *Config) (*Client, error) {
	var client *redis.Client

	err := connection.WithRetry(ctx, connection.FixedRetry(config.MaxRetries, config.RetryInterval), func(ctx context.Context) error {
		candidate := redis.NewClient(&redis.Options{
			Addr:               config.Addr,
			Password:           config.Password,
			DB:                 config.DB,
			PoolSize:           config.PoolSize,
			MinIdleConns:       config.MinIdleConn,
			DialTimeout:        5 * time.Second,
			ReadTimeout:        3 * time.Second,
			WriteTimeout:       3 * time.Second,
			PoolTimeout:        4 * time.Second,
			IdleCheckFrequency: config.HealthCheck,
		})

		if err := candidate.Ping(ctx).Err(); err != nil {
			candidate.Close()
			return fmt.Errorf("failed to ping redis: %w", err)
		}
		client = candidate
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis after %d retries: %w", config.MaxRetries, err)
	}

	return &Client{Client: client}, nil
}

// Close закрывает подключение к Redis
func (r *Client) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// HealthCheck проверяет состояние подключения к Redis
func (r *Client) HealthCheck(ctx context.Context) error {
	if r.Client == nil {
		return fmt.Errorf("redis client is not initialized")
	}
	return r.Client.Ping(ctx).Err()
}
