package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage хранит каждую запись в отдельном файле директории сессии
type FileStorage struct {
	dir string
}

// NewFileStorage создает хранилище в указанной директории
func NewFileStorage(dir string) (*FileStorage, error) {
	if dir == "" {
		return nil, fmt.Errorf("директория хранилища не указана")
	}
	// Директорию создаем только с правами владельца: в ней лежит токен
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}
	return &FileStorage{dir: dir}, nil
}

// Dir возвращает директорию хранилища
func (fs *FileStorage) Dir() string {
	return fs.dir
}

// Get читает запись из файла
func (fs *FileStorage) Get(_ context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}

	data, err := os.ReadFile(filepath.Join(fs.dir, key))
	if os.IsNotExist(err) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ошибка чтения записи %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set записывает запись через временный файл и rename
func (fs *FileStorage) Set(_ context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(fs.dir, "."+key+".*")
	if err != nil {
		return fmt.Errorf("ошибка создания временного файла: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка установки прав на файл: %w", err)
	}
	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		return fmt.Errorf("ошибка записи %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("ошибка записи %s: %w", key, err)
	}

	if err := os.Rename(tmpName, filepath.Join(fs.dir, key)); err != nil {
		return fmt.Errorf("ошибка сохранения %s: %w", key, err)
	}
	return nil
}

// Delete удаляет файлы записей
func (fs *FileStorage) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return err
		}
		if err := os.Remove(filepath.Join(fs.dir, key)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("ошибка удаления записи %s: %w", key, err)
		}
	}
	return nil
}
