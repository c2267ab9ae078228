package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/pkg/metrics"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/store"
)

func alice() *domain.User {
	return &domain.User{
		ID:          1,
		Username:    "alice",
		Email:       "alice@example.com",
		Role:        domain.RoleUser,
		Permissions: map[string]bool{"services": true},
	}
}

func newTestSession(t *testing.T, opts ...Option) (*Session, *store.MemoryStorage) {
	t.Helper()
	storage := store.NewMemoryStorage()
	s := New(store.NewTokenStore(storage), opts...)
	require.NoError(t, s.Restore(context.Background()))
	return s, storage
}

func TestNew_LoadingUntilRestore(t *testing.T) {
	s := New(store.NewTokenStore(store.NewMemoryStorage()))
	assert.True(t, s.IsLoading())
	assert.False(t, s.IsAuthenticated())

	require.NoError(t, s.Restore(context.Background()))
	assert.False(t, s.IsLoading())
	assert.False(t, s.IsAuthenticated())
}

func TestRestore_Authenticated(t *testing.T) {
	storage := store.NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, store.NewTokenStore(storage).Save(ctx, "abc123", alice()))

	s := New(store.NewTokenStore(storage))
	require.NoError(t, s.Restore(ctx))

	state := s.Snapshot()
	assert.False(t, state.IsLoading)
	assert.True(t, state.IsAuthenticated)
	assert.Equal(t, "abc123", state.Token)
	assert.Equal(t, alice(), state.User)
}

func TestRestore_MatchesSessionAfterUpdate(t *testing.T) {
	storage := store.NewMemoryStorage()
	ctx := context.Background()
	login := time.Now()
	user := alice()
	user.LastLogin = &login

	s := New(store.NewTokenStore(storage))
	require.NoError(t, s.Restore(ctx))
	require.NoError(t, s.Login(ctx, "abc123", user))

	// Серверная запись без разрешений дает пустую карту
	require.NoError(t, s.UpdateUser(ctx, domain.PatchFromUser(domain.User{Username: "alice", Role: domain.RoleUser, LastLogin: &login})))
	require.NotNil(t, s.User().Permissions)

	restored := New(store.NewTokenStore(storage))
	require.NoError(t, restored.Restore(ctx))
	assert.Equal(t, s.User(), restored.User())
}

func TestRestore_CorruptStorage(t *testing.T) {
	storage := store.NewMemoryStorage()
	ctx := context.Background()
	require.NoError(t, storage.Set(ctx, store.TokenKey, "abc123"))
	require.NoError(t, storage.Set(ctx, store.UserKey, "{broken"))

	s := New(store.NewTokenStore(storage))
	require.NoError(t, s.Restore(ctx))

	state := s.Snapshot()
	assert.False(t, state.IsLoading)
	assert.False(t, state.IsAuthenticated)
	assert.Empty(t, state.Token)
	assert.Nil(t, state.User)
	assert.Equal(t, 0, storage.Len())
}

// MockPersister мок хранилища сессии
type MockPersister struct {
	mock.Mock
}

func (m *MockPersister) Save(ctx context.Context, token string, user *domain.User) error {
	return m.Called(token, user).Error(0)
}

func (m *MockPersister) SaveUser(ctx context.Context, user *domain.User) error {
	return m.Called(user).Error(0)
}

func (m *MockPersister) Load(ctx context.Context) (*store.Credentials, error) {
	args := m.Called()
	creds, _ := args.Get(0).(*store.Credentials)
	return creds, args.Error(1)
}

func (m *MockPersister) Clear(ctx context.Context) error {
	return m.Called().Error(0)
}

func TestRestore_StorageFailure(t *testing.T) {
	persister := new(MockPersister)
	persister.On("Load").Return(nil, errors.New(errors.ErrInternal, "redis down"))

	s := New(persister)
	err := s.Restore(context.Background())
	assert.Error(t, err)
	assert.False(t, s.IsLoading())
	assert.False(t, s.IsAuthenticated())
	persister.AssertNotCalled(t, "Clear")
}

func TestLogin(t *testing.T) {
	s, storage := newTestSession(t)

	require.NoError(t, s.Login(context.Background(), "abc123", alice()))

	assert.True(t, s.IsAuthenticated())
	assert.Equal(t, "abc123", s.Token())
	assert.Equal(t, "alice", s.User().Username)
	assert.Equal(t, domain.RoleUser, s.Role())
	assert.Equal(t, 2, storage.Len())
}

func TestLogin_Rejected(t *testing.T) {
	s, storage := newTestSession(t)

	err := s.Login(context.Background(), "", alice())
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
	err = s.Login(context.Background(), "abc", &domain.User{})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 0, storage.Len())
}

func TestLogin_CallerCannotMutateSession(t *testing.T) {
	s, _ := newTestSession(t)
	user := alice()
	require.NoError(t, s.Login(context.Background(), "abc123", user))

	user.Username = "mallory"
	s.User().Role = domain.RoleAdmin

	assert.Equal(t, "alice", s.User().Username)
	assert.Equal(t, domain.RoleUser, s.Role())
}

func TestLogout_Idempotent(t *testing.T) {
	var reasons []Reason
	m := metrics.NewMetrics("test")
	s, storage := newTestSession(t,
		WithMetrics(m),
		WithLogoutHook(func(reason Reason) { reasons = append(reasons, reason) }),
	)
	ctx := context.Background()
	require.NoError(t, s.Login(ctx, "abc123", alice()))

	require.NoError(t, s.Logout(ctx, ReasonUser))
	first := s.Snapshot()
	require.NoError(t, s.Logout(ctx, ReasonUser))
	second := s.Snapshot()

	assert.Equal(t, first, second)
	assert.False(t, second.IsAuthenticated)
	assert.False(t, second.IsLoading)
	assert.Equal(t, 0, storage.Len())
	assert.Equal(t, []Reason{ReasonUser, ReasonUser}, reasons)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.SessionTeardowns.WithLabelValues("logout")))
}

func TestLogout_ClearFailureStillResetsState(t *testing.T) {
	persister := new(MockPersister)
	persister.On("Load").Return(&store.Credentials{Token: "abc", User: alice()}, nil)
	persister.On("Clear").Return(errors.New(errors.ErrInternal, "disk full"))

	called := 0
	s := New(persister)
	s.OnLogout(func(Reason) { called++ })
	require.NoError(t, s.Restore(context.Background()))
	require.True(t, s.IsAuthenticated())

	err := s.Logout(context.Background(), ReasonExpired)
	assert.Error(t, err)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 1, called)
}

func TestUpdateUser_NoUser(t *testing.T) {
	s, storage := newTestSession(t)
	admin := domain.RoleAdmin

	assert.NotPanics(t, func() {
		assert.NoError(t, s.UpdateUser(context.Background(), domain.UserPatch{Role: &admin}))
	})
	assert.Nil(t, s.User())
	assert.Equal(t, 0, storage.Len())
}

func TestUpdateUser_MergesAndPersists(t *testing.T) {
	s, storage := newTestSession(t)
	ctx := context.Background()
	require.NoError(t, s.Login(ctx, "abc123", alice()))

	done := true
	logo := "data:image/png;base64,AAAA"
	require.NoError(t, s.UpdateUser(ctx, domain.UserPatch{SetupCompleted: &done, OrganizationLogo: &logo}))

	user := s.User()
	assert.True(t, user.SetupCompleted)
	assert.Equal(t, logo, user.OrganizationLogo)
	assert.Equal(t, "alice", user.Username)
	assert.True(t, user.Permissions["services"])

	// Новая сессия видит обновленную запись
	reloaded := New(store.NewTokenStore(storage))
	require.NoError(t, reloaded.Restore(ctx))
	assert.Equal(t, user, reloaded.User())
}

func TestUpdateUser_PersistFailureKeepsState(t *testing.T) {
	persister := new(MockPersister)
	persister.On("Load").Return(&store.Credentials{Token: "abc", User: alice()}, nil)
	persister.On("SaveUser", mock.Anything).Return(errors.New(errors.ErrInternal, "read-only"))

	s := New(persister)
	require.NoError(t, s.Restore(context.Background()))

	admin := domain.RoleAdmin
	err := s.UpdateUser(context.Background(), domain.UserPatch{Role: &admin})
	assert.Error(t, err)
	assert.Equal(t, domain.RoleUser, s.Role())
}

func TestRole_Default(t *testing.T) {
	s, _ := newTestSession(t)
	assert.Equal(t, domain.RoleUser, s.Role())
}

func TestTokenClaims(t *testing.T) {
	expires := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "1",
		Issuer:    "assistanthub",
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	s, _ := newTestSession(t)
	_, err = s.TokenClaims()
	assert.True(t, errors.HasCode(err, errors.ErrUnauthenticated))

	require.NoError(t, s.Login(context.Background(), token, alice()))
	claims, err := s.TokenClaims()
	require.NoError(t, err)
	assert.Equal(t, "1", claims.Subject)
	assert.Equal(t, "assistanthub", claims.Issuer)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, expires.Equal(*claims.ExpiresAt))
	assert.False(t, claims.Expired(time.Now()))
	assert.True(t, claims.Expired(expires.Add(time.Minute)))
}

func TestTokenClaims_OpaqueToken(t *testing.T) {
	_, err := ParseClaims("abc123")
	assert.True(t, errors.HasCode(err, errors.ErrParse))
}
