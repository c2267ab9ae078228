package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// RedisStorage хранит записи сессии в Redis под префиксом пространства имен
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisStorage создает хранилище поверх существующего клиента
func NewRedisStorage(client *redis.Client, namespace string) *RedisStorage {
	if namespace == "" {
		namespace = "default"
	}
	return &RedisStorage{
		client: client,
		prefix: "assistanthub:console:" + namespace + ":",
	}
}

func (rs *RedisStorage) key(key string) string {
	return rs.prefix + key
}

// Get загружает запись из Redis
func (rs *RedisStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}

	value, err := rs.client.Get(ctx, rs.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ошибка загрузки %s из Redis: %w", key, err)
	}
	return value, true, nil
}

// Set сохраняет запись без TTL: сессия живет до logout или 401
func (rs *RedisStorage) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := rs.client.Set(ctx, rs.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("ошибка сохранения %s в Redis: %w", key, err)
	}
	return nil
}

// Delete удаляет записи из Redis
func (rs *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return err
		}
		full = append(full, rs.key(key))
	}
	if err := rs.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("ошибка удаления записей из Redis: %w", err)
	}
	return nil
}
