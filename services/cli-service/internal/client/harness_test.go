package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/endpoints"
	"AssistantHubPlatform/services/cli-service/internal/gateway"
	"AssistantHubPlatform/services/cli-service/internal/session"
	"AssistantHubPlatform/services/cli-service/internal/store"
)

// recordedRequest запрос, полученный тестовым бэкендом
type recordedRequest struct {
	Method string
	Path   string
	Query  string
	Auth   string
	Body   map[string]interface{}
}

type route struct {
	status int
	body   string
}

// fakeBackend тестовый бэкенд с фиксированными ответами
type fakeBackend struct {
	server *httptest.Server

	mu       sync.Mutex
	routes   map[string][]route
	requests []recordedRequest
}

func newFakeBackend(t *testing.T) *fakeBackend {
	b := &fakeBackend{routes: make(map[string][]route)}
	b.server = httptest.NewServer(http.HandlerFunc(b.handle))
	t.Cleanup(b.server.Close)
	return b
}

// on задает ответ; несколько ответов на один маршрут отдаются по очереди,
// последний повторяется
func (b *fakeBackend) on(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	key := method + " " + path
	b.routes[key] = append(b.routes[key], route{status: status, body: body})
}

func (b *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	raw, _ := io.ReadAll(r.Body)
	var body map[string]interface{}
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  r.URL.RawQuery,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	key := r.Method + " " + r.URL.Path
	responses := b.routes[key]
	resp := route{status: http.StatusNotFound, body: `{"success":false,"error":"not found"}`}
	if len(responses) > 0 {
		resp = responses[0]
		if len(responses) > 1 {
			b.routes[key] = responses[1:]
		}
	}
	b.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = io.WriteString(w, resp.body)
}

func (b *fakeBackend) calls() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

func (b *fakeBackend) last(t *testing.T) recordedRequest {
	t.Helper()
	calls := b.calls()
	require.NotEmpty(t, calls, "бэкенд не получил запросов")
	return calls[len(calls)-1]
}

type harness struct {
	backend *fakeBackend
	session *session.Session
	storage *store.MemoryStorage
	deps    Deps
}

// newHarness поднимает бэкенд, шлюз и сессию. user=nil оставляет сессию без входа.
func newHarness(t *testing.T, user *domain.User) *harness {
	t.Helper()
	backend := newFakeBackend(t)

	storage := store.NewMemoryStorage()
	sess := session.New(store.NewTokenStore(storage))
	require.NoError(t, sess.Restore(context.Background()))
	if user != nil {
		require.NoError(t, sess.Login(context.Background(), "abc123", user))
	}

	gw := gateway.New(gateway.Config{BaseURL: backend.server.URL, Timeout: 5 * time.Second}, sess)
	return &harness{
		backend: backend,
		session: sess,
		storage: storage,
		deps: Deps{
			Gateway:  gw,
			Session:  sess,
			Resolver: endpoints.NewResolver(backend.server.URL),
		},
	}
}

func regularUser() *domain.User {
	return &domain.User{ID: 1, Username: "alice", Email: "alice@example.com", Role: domain.RoleUser}
}

func adminUser() *domain.User {
	return &domain.User{ID: 2, Username: "root", Email: "root@example.com", Role: domain.RoleAdmin}
}

// gatewayFunc шлюз-функция для тестов, где нужен полный контроль над ответом
type gatewayFunc func(ctx context.Context, req gateway.Request) (*gateway.Envelope, error)

func (f gatewayFunc) Do(ctx context.Context, req gateway.Request) (*gateway.Envelope, error) {
	return f(ctx, req)
}
