package endpoints

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/domain"
)

func TestResolve(t *testing.T) {
	resolver := NewResolver("http://api.local:8000/")

	tests := []struct {
		name     string
		resource Resource
		role     domain.Role
		params   []string
		expected string
	}{
		{"admin services", Services, domain.RoleAdmin, nil, "http://api.local:8000/api/admin/services"},
		{"user services", Services, domain.RoleUser, nil, "http://api.local:8000/api/services"},
		{"admin toggle", ServiceToggle, domain.RoleAdmin, []string{"svc-1"}, "http://api.local:8000/api/admin/services/svc-1/toggle"},
		{"user tickets", Tickets, domain.RoleUser, []string{"OPS"}, "http://api.local:8000/api/tickets/OPS"},
		{"webhook test", WebhookTest, domain.RoleUser, []string{"42"}, "http://api.local:8000/api/webhooks/42/test"},
		{"origin reject", OriginReject, domain.RoleAdmin, []string{"7"}, "http://api.local:8000/api/admin/origin-requests/7/reject"},
		{"shared assistants", Assistants, domain.RoleAdmin, nil, "http://api.local:8000/api/assistants"},
		{"escaped param", Service, domain.RoleUser, []string{"a/b c"}, "http://api.local:8000/api/services/a%2Fb%20c"},
		{"unknown role falls back to user", Webhooks, domain.Role("owner"), nil, "http://api.local:8000/api/webhooks"},
		{"empty role falls back to user", Services, "", nil, "http://api.local:8000/api/services"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.Resolve(tt.resource, tt.role, tt.params...)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestResolve_AdminOnly(t *testing.T) {
	_, err := Path(Users, domain.RoleUser)
	assert.True(t, errors.HasCode(err, errors.ErrForbidden))

	path, err := Path(UserRole, domain.RoleAdmin, "5")
	require.NoError(t, err)
	assert.Equal(t, "/api/admin/users/5/role", path)
}

func TestResolve_Params(t *testing.T) {
	_, err := Path(Service, domain.RoleUser)
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	_, err = Path(Services, domain.RoleUser, "extra")
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	_, err = Path(Webhook, domain.RoleAdmin, "")
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
}

func TestRoutes_BothRolesForSharedResources(t *testing.T) {
	// Ресурсы с двумя семействами должны быть описаны для обеих ролей
	for key := range routes {
		if key.resource == Users || key.resource == UserRole {
			continue
		}
		other := domain.RoleUser
		if key.role == domain.RoleUser {
			other = domain.RoleAdmin
		}
		_, ok := routes[routeKey{key.resource, other}]
		assert.True(t, ok, "нет эндпоинта %s для роли %s", key.resource, other)
	}
}
