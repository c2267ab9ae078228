package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// runStorageContract общие проверки для всех реализаций Storage
func runStorageContract(t *testing.T, storage Storage) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		value, found, err := storage.Get(ctx, "absent")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, value)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, storage.Set(ctx, "token", "abc123"))
		value, found, err := storage.Get(ctx, "token")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "abc123", value)
	})

	t.Run("overwrite", func(t *testing.T) {
		require.NoError(t, storage.Set(ctx, "token", "first"))
		require.NoError(t, storage.Set(ctx, "token", "second"))
		value, _, err := storage.Get(ctx, "token")
		require.NoError(t, err)
		assert.Equal(t, "second", value)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, storage.Set(ctx, "token", "abc"))
		require.NoError(t, storage.Set(ctx, "user", "{}"))
		require.NoError(t, storage.Delete(ctx, "token", "user"))

		_, found, err := storage.Get(ctx, "token")
		require.NoError(t, err)
		assert.False(t, found)
		_, found, err = storage.Get(ctx, "user")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("delete missing", func(t *testing.T) {
		assert.NoError(t, storage.Delete(ctx, "never_written"))
		assert.NoError(t, storage.Delete(ctx))
	})

	t.Run("invalid key", func(t *testing.T) {
		assert.Error(t, storage.Set(ctx, "../escape", "x"))
		_, _, err := storage.Get(ctx, "Token")
		assert.Error(t, err)
	})
}

func TestMemoryStorage(t *testing.T) {
	storage := NewMemoryStorage()
	runStorageContract(t, storage)
	assert.Equal(t, 0, storage.Len())
}

func TestFileStorage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	storage, err := NewFileStorage(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, storage.Dir())

	runStorageContract(t, storage)
}

func TestFileStorage_Permissions(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "session")
	storage, err := NewFileStorage(dir)
	require.NoError(t, err)

	require.NoError(t, storage.Set(context.Background(), "token", "secret"))

	info, err := os.Stat(filepath.Join(dir, "token"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	dirInfo, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), dirInfo.Mode().Perm())

	// Временные файлы не остаются после записи
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStorage_EmptyDir(t *testing.T) {
	_, err := NewFileStorage("")
	assert.Error(t, err)
}

func setupTestRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("ASSISTANTHUB_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("Redis недоступен на %s: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisStorage(t *testing.T) {
	client := setupTestRedis(t)
	namespace := "test_" + strings.ReplaceAll(t.Name(), "/", "_")
	storage := NewRedisStorage(client, namespace)
	t.Cleanup(func() {
		_ = storage.Delete(context.Background(), "token", "user")
	})

	runStorageContract(t, storage)

	require.NoError(t, storage.Set(context.Background(), "token", "abc"))
	raw, err := client.Get(context.Background(), "assistanthub:console:"+namespace+":token").Result()
	require.NoError(t, err)
	assert.Equal(t, "abc", raw)
}

func TestPostgresStorage_Live(t *testing.T) {
	url := os.Getenv("ASSISTANTHUB_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ASSISTANTHUB_TEST_DATABASE_URL не задан")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	defer pool.Close()

	storage := NewPostgresStorage(pool, "test_live")
	require.NoError(t, storage.EnsureSchema(ctx))
	t.Cleanup(func() {
		_ = storage.Delete(context.Background(), "token", "user")
	})

	runStorageContract(t, storage)
}

// fakeRow реализация pgx.Row для тестов
type fakeRow struct {
	value string
	err   error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*string)) = r.value
	return nil
}

// MockQuerier мок PgxQuerier
type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	called := m.Called(sql, args)
	return pgconn.NewCommandTag(called.String(0)), called.Error(1)
}

func (m *MockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	called := m.Called(sql, args)
	return called.Get(0).(pgx.Row)
}

func TestPostgresStorage_Get(t *testing.T) {
	db := new(MockQuerier)
	db.On("QueryRow", selectEntrySQL, []any{"default", "token"}).Return(fakeRow{value: "abc"})
	db.On("QueryRow", selectEntrySQL, []any{"default", "user"}).Return(fakeRow{err: pgx.ErrNoRows})

	storage := NewPostgresStorage(db, "")

	value, found, err := storage.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "abc", value)

	_, found, err = storage.Get(context.Background(), "user")
	require.NoError(t, err)
	assert.False(t, found)

	db.AssertExpectations(t)
}

func TestPostgresStorage_SetAndDelete(t *testing.T) {
	db := new(MockQuerier)
	db.On("Exec", createEntriesTableSQL, []any(nil)).Return("CREATE TABLE", nil)
	db.On("Exec", upsertEntrySQL, []any{"ops", "token", "abc"}).Return("INSERT 0 1", nil)
	db.On("Exec", deleteEntriesSQL, []any{"ops", []string{"token", "user"}}).Return("DELETE 2", nil)

	storage := NewPostgresStorage(db, "ops")
	ctx := context.Background()

	require.NoError(t, storage.EnsureSchema(ctx))
	require.NoError(t, storage.Set(ctx, "token", "abc"))
	require.NoError(t, storage.Delete(ctx, "token", "user"))
	require.NoError(t, storage.Delete(ctx))

	db.AssertExpectations(t)
}

func TestPostgresStorage_QueryError(t *testing.T) {
	db := new(MockQuerier)
	db.On("QueryRow", selectEntrySQL, []any{"default", "token"}).Return(fakeRow{err: assert.AnError})

	storage := NewPostgresStorage(db, "default")
	_, found, err := storage.Get(context.Background(), "token")
	assert.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, found)
}
