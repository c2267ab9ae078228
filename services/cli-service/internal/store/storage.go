package store

import (
	"context"
	"fmt"
	"regexp"
	"sync"
)

// Storage долговременное хранилище клиента: набор именованных строковых записей.
// Реализации: MemoryStorage, FileStorage, RedisStorage, PostgresStorage.
type Storage interface {
	// Get возвращает значение записи; found=false, если записи нет
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set создает или перезаписывает запись
	Set(ctx context.Context, key, value string) error
	// Delete удаляет записи; отсутствующие ключи не являются ошибкой
	Delete(ctx context.Context, keys ...string) error
}

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

func validateKey(key string) error {
	if !keyPattern.MatchString(key) {
		return fmt.Errorf("некорректный ключ хранилища: %q", key)
	}
	return nil
}

// MemoryStorage хранилище в памяти процесса
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryStorage создает пустое хранилище в памяти
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]string)}
}

// Get возвращает значение записи
func (m *MemoryStorage) Get(_ context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.entries[key]
	return value, ok, nil
}

// Set сохраняет запись
func (m *MemoryStorage) Set(_ context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = value
	return nil
}

// Delete удаляет записи
func (m *MemoryStorage) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.entries, key)
	}
	return nil
}

// Len возвращает количество записей
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
