package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/endpoints"
	"AssistantHubPlatform/services/cli-service/internal/gateway"
)

const servicesList = `{"success":true,"data":[
	{"service_id":"svc-1","service_name":"Support","assistant_id":"asst-1","is_active":true},
	{"service_id":"svc-2","service_name":"Sales","assistant_id":"asst-2","is_active":false}
]}`

func TestServicesClient_ListByRole(t *testing.T) {
	tests := []struct {
		name string
		user *domain.User
		path string
	}{
		{name: "user", user: regularUser(), path: "/api/services"},
		{name: "admin", user: adminUser(), path: "/api/admin/services"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.user)
			h.backend.on(http.MethodGet, tt.path, http.StatusOK, servicesList)

			services, err := NewServicesClient(h.deps).List(context.Background())
			require.NoError(t, err)
			require.Len(t, services, 2)
			assert.Equal(t, "Support", services[0].ServiceName)
			assert.False(t, services[1].Active)
		})
	}
}

func TestServicesClient_CRUD(t *testing.T) {
	h := newHarness(t, regularUser())
	h.backend.on(http.MethodPost, "/api/services", http.StatusCreated,
		`{"success":true,"data":{"service_id":"svc-3","service_name":"Billing","assistant_id":"asst-1","is_active":true}}`)
	h.backend.on(http.MethodGet, "/api/services/svc-3", http.StatusOK,
		`{"success":true,"data":{"service_id":"svc-3","service_name":"Billing"}}`)
	h.backend.on(http.MethodPut, "/api/services/svc-3", http.StatusOK,
		`{"success":true,"data":{"service_id":"svc-3","service_name":"Billing v2"}}`)
	h.backend.on(http.MethodDelete, "/api/services/svc-3", http.StatusOK, `{"success":true}`)
	client := NewServicesClient(h.deps)
	ctx := context.Background()

	created, err := client.Create(ctx, domain.ServiceInput{
		ServiceName: " Billing ",
		AssistantID: "asst-1",
		Config:      json.RawMessage(`{"greeting":"hi"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, "svc-3", created.ServiceID)
	body := h.backend.last(t).Body
	assert.Equal(t, "Billing", body["service_name"])
	assert.Equal(t, map[string]interface{}{"greeting": "hi"}, body["config"])

	got, err := client.Get(ctx, "svc-3")
	require.NoError(t, err)
	assert.Equal(t, "Billing", got.ServiceName)

	updated, err := client.Update(ctx, "svc-3", domain.ServiceInput{ServiceName: "Billing v2"})
	require.NoError(t, err)
	assert.Equal(t, "Billing v2", updated.ServiceName)

	require.NoError(t, client.Delete(ctx, "svc-3"))
	assert.Equal(t, http.MethodDelete, h.backend.last(t).Method)
}

func TestServicesClient_CreateValidation(t *testing.T) {
	h := newHarness(t, regularUser())
	client := NewServicesClient(h.deps)

	_, err := client.Create(context.Background(), domain.ServiceInput{ServiceName: "  ", AssistantID: "asst-1"})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	_, err = client.Create(context.Background(), domain.ServiceInput{ServiceName: "Billing"})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	_, err = client.Create(context.Background(), domain.ServiceInput{
		ServiceName: "Billing", AssistantID: "asst-1", Config: json.RawMessage(`{broken`),
	})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	_, err = client.Get(context.Background(), "")
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	assert.Empty(t, h.backend.calls())
}

func TestCatalog_ToggleOptimistic(t *testing.T) {
	h := newHarness(t, regularUser())
	h.backend.on(http.MethodGet, "/api/services", http.StatusOK, servicesList)
	h.backend.on(http.MethodPost, "/api/services/svc-2/toggle", http.StatusOK,
		`{"success":true,"data":{"service_id":"svc-2","service_name":"Sales","assistant_id":"asst-2","is_active":true}}`)

	catalog := NewCatalog(NewServicesClient(h.deps))
	require.NoError(t, catalog.Load(context.Background()))
	assert.True(t, catalog.Loaded())

	service, err := catalog.Toggle(context.Background(), "svc-2")
	require.NoError(t, err)
	assert.True(t, service.Active)

	stored, ok := catalog.Find("svc-2")
	require.True(t, ok)
	assert.True(t, stored.Active)
}

func TestCatalog_ToggleRollback(t *testing.T) {
	h := newHarness(t, regularUser())
	h.backend.on(http.MethodGet, "/api/services", http.StatusOK, servicesList)
	h.backend.on(http.MethodPost, "/api/services/svc-1/toggle", http.StatusBadRequest,
		`{"success":false,"error":"Сервис заблокирован"}`)

	catalog := NewCatalog(NewServicesClient(h.deps))
	require.NoError(t, catalog.Load(context.Background()))

	_, err := catalog.Toggle(context.Background(), "svc-1")
	assert.True(t, errors.HasCode(err, errors.ErrApplication))

	stored, _ := catalog.Find("svc-1")
	assert.True(t, stored.Active)
}

func TestCatalog_ToggleUnknown(t *testing.T) {
	catalog := NewCatalog(NewServicesClient(newHarness(t, regularUser()).deps))
	_, err := catalog.Toggle(context.Background(), "svc-404")
	assert.True(t, errors.HasCode(err, errors.ErrNotFound))
}

// catalogWithGateway каталог поверх управляемого шлюза
func catalogWithGateway(t *testing.T, gw Gateway) *Catalog {
	t.Helper()
	h := newHarness(t, regularUser())
	deps := h.deps
	deps.Gateway = gw
	return NewCatalog(NewServicesClient(deps))
}

func TestCatalog_TogglePending(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	catalog := catalogWithGateway(t, gatewayFunc(func(ctx context.Context, req gateway.Request) (*gateway.Envelope, error) {
		if req.Method == http.MethodGet {
			return &gateway.Envelope{Success: true, Data: json.RawMessage(`[{"service_id":"svc-1","is_active":false}]`)}, nil
		}
		close(entered)
		<-release
		return &gateway.Envelope{Success: true, Raw: json.RawMessage(`{"success":true}`)}, nil
	}))
	require.NoError(t, catalog.Load(context.Background()))

	done := make(chan error, 1)
	go func() {
		_, err := catalog.Toggle(context.Background(), "svc-1")
		done <- err
	}()
	<-entered

	// Пока первый запрос не завершен, сервис уже переключен локально
	stored, _ := catalog.Find("svc-1")
	assert.True(t, stored.Active)

	_, err := catalog.Toggle(context.Background(), "svc-1")
	assert.True(t, errors.HasCode(err, errors.ErrConflict))

	close(release)
	require.NoError(t, <-done)

	stored, _ = catalog.Find("svc-1")
	assert.True(t, stored.Active)
}

func TestCatalog_ToggleCancelledSkipsServerRecord(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	catalog := catalogWithGateway(t, gatewayFunc(func(_ context.Context, req gateway.Request) (*gateway.Envelope, error) {
		if req.Method == http.MethodGet {
			return &gateway.Envelope{Success: true, Data: json.RawMessage(`[{"service_id":"svc-1","service_name":"Support","is_active":false}]`)}, nil
		}
		// Владелец ушел, пока запрос был в полете
		cancel()
		return &gateway.Envelope{Success: true, Data: json.RawMessage(`{"service_id":"svc-1","service_name":"Renamed","is_active":true}`)}, nil
	}))
	require.NoError(t, catalog.Load(context.Background()))

	_, err := catalog.Toggle(ctx, "svc-1")
	assert.True(t, errors.HasCode(err, errors.ErrTransport))

	stored, _ := catalog.Find("svc-1")
	assert.Equal(t, "Support", stored.ServiceName)
}

func TestCatalog_LoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	catalog := catalogWithGateway(t, gatewayFunc(func(context.Context, gateway.Request) (*gateway.Envelope, error) {
		cancel()
		return &gateway.Envelope{Success: true, Data: json.RawMessage(`[{"service_id":"svc-1"}]`)}, nil
	}))

	err := catalog.Load(ctx)
	assert.Error(t, err)
	assert.False(t, catalog.Loaded())
	assert.Empty(t, catalog.Items())
}

func TestCatalog_CreateReloads(t *testing.T) {
	h := newHarness(t, regularUser())
	h.backend.on(http.MethodPost, "/api/services", http.StatusOK,
		`{"success":true,"data":{"service_id":"svc-1","service_name":"Support"}}`)
	h.backend.on(http.MethodGet, "/api/services", http.StatusOK, servicesList)

	catalog := NewCatalog(NewServicesClient(h.deps))
	service, err := catalog.Create(context.Background(), domain.ServiceInput{ServiceName: "Support", AssistantID: "asst-1"})
	require.NoError(t, err)
	assert.Equal(t, "svc-1", service.ServiceID)
	assert.Len(t, catalog.Items(), 2)

	calls := h.backend.calls()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPost, calls[0].Method)
	assert.Equal(t, http.MethodGet, calls[1].Method)
}

func TestCatalog_Delete(t *testing.T) {
	h := newHarness(t, adminUser())
	h.backend.on(http.MethodGet, "/api/admin/services", http.StatusOK, servicesList)
	h.backend.on(http.MethodDelete, "/api/admin/services/svc-1", http.StatusOK, `{"success":true}`)

	catalog := NewCatalog(NewServicesClient(h.deps))
	require.NoError(t, catalog.Load(context.Background()))
	require.NoError(t, catalog.Delete(context.Background(), "svc-1"))

	items := catalog.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "svc-2", items[0].ServiceID)
}

func TestServicesClient_UsesResolver(t *testing.T) {
	h := newHarness(t, adminUser())
	h.backend.on(http.MethodPost, "/api/admin/services/svc-1/toggle", http.StatusOK, `{"success":true}`)

	_, err := NewServicesClient(h.deps).Toggle(context.Background(), "svc-1")
	require.NoError(t, err)

	expected, err := endpoints.Path(endpoints.ServiceToggle, domain.RoleAdmin, "svc-1")
	require.NoError(t, err)
	assert.Equal(t, expected, h.backend.last(t).Path)
}
