package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxQuerier подмножество pgxpool.Pool, нужное хранилищу
type PgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	createEntriesTableSQL = `CREATE TABLE IF NOT EXISTS console_session_entries (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      TEXT        NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (namespace, key)
)`
	selectEntrySQL = `SELECT value FROM console_session_entries WHERE namespace = $1 AND key = $2`
	upsertEntrySQL = `INSERT INTO console_session_entries (namespace, key, value, updated_at)
VALUES ($1, $2, $3, now())
ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	deleteEntriesSQL = `DELETE FROM console_session_entries WHERE namespace = $1 AND key = ANY($2)`
)

// PostgresStorage хранит записи сессии в таблице PostgreSQL
type PostgresStorage struct {
	db        PgxQuerier
	namespace string
}

// NewPostgresStorage создает хранилище; схему создает EnsureSchema
func NewPostgresStorage(db PgxQuerier, namespace string) *PostgresStorage {
	if namespace == "" {
		namespace = "default"
	}
	return &PostgresStorage{db: db, namespace: namespace}
}

// EnsureSchema создает таблицу записей, если ее нет
func (ps *PostgresStorage) EnsureSchema(ctx context.Context) error {
	if _, err := ps.db.Exec(ctx, createEntriesTableSQL); err != nil {
		return fmt.Errorf("ошибка создания таблицы сессий: %w", err)
	}
	return nil
}

// Get загружает запись
func (ps *PostgresStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := validateKey(key); err != nil {
		return "", false, err
	}

	var value string
	err := ps.db.QueryRow(ctx, selectEntrySQL, ps.namespace, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("ошибка загрузки %s из PostgreSQL: %w", key, err)
	}
	return value, true, nil
}

// Set создает или обновляет запись
func (ps *PostgresStorage) Set(ctx context.Context, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if _, err := ps.db.Exec(ctx, upsertEntrySQL, ps.namespace, key, value); err != nil {
		return fmt.Errorf("ошибка сохранения %s в PostgreSQL: %w", key, err)
	}
	return nil
}

// Delete удаляет записи
func (ps *PostgresStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	for _, key := range keys {
		if err := validateKey(key); err != nil {
			return err
		}
	}
	if _, err := ps.db.Exec(ctx, deleteEntriesSQL, ps.namespace, keys); err != nil {
		return fmt.Errorf("ошибка удаления записей из PostgreSQL: %w", err)
	}
	return nil
}
