package client

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/session"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret(""))
	assert.Equal(t, "***", MaskSecret("abc"))
	assert.Equal(t, "****", MaskSecret("abcd"))
	assert.Equal(t, "****efgh", MaskSecret("abcdefgh"))
	assert.Equal(t, "**ёжик", MaskSecret("ёлёжик"))
}

func TestAPITokensClient_Get(t *testing.T) {
	h := newHarness(t, regularUser())
	h.backend.on(http.MethodGet, "/api/user/api-tokens", http.StatusOK,
		`{"success":true,"data":{"issue_tracker_url":"https://corp.atlassian.net","issue_tracker_token":"tracker-secret-1234","ai_provider_token":"sk-abcdef"}}`)

	tokens, err := NewAPITokensClient(h.deps).Get(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "https://corp.atlassian.net", tokens.IssueTrackerURL)
	assert.Equal(t, "***************1234", tokens.IssueTrackerToken)
	assert.Equal(t, "*****cdef", tokens.AIProviderToken)
}

func TestAPITokensClient_Save(t *testing.T) {
	h := newHarness(t, regularUser())
	h.backend.on(http.MethodPut, "/api/user/api-tokens", http.StatusOK, `{"success":true}`)
	client := NewAPITokensClient(h.deps)
	ctx := context.Background()

	assert.True(t, errors.HasCode(client.Save(ctx, domain.APITokens{}), errors.ErrValidation))
	assert.True(t, errors.HasCode(client.Save(ctx, domain.APITokens{IssueTrackerURL: "ftp://corp"}), errors.ErrValidation))
	assert.True(t, errors.HasCode(client.Save(ctx, domain.APITokens{IssueTrackerEmail: "nobody"}), errors.ErrValidation))
	assert.Empty(t, h.backend.calls())

	require.NoError(t, client.Save(ctx, domain.APITokens{
		IssueTrackerURL:   "https://corp.atlassian.net",
		IssueTrackerEmail: "alice@example.com",
		IssueTrackerToken: "tracker-secret",
	}))
	body := h.backend.last(t).Body
	assert.Equal(t, "tracker-secret", body["issue_tracker_token"])
	_, hasAI := body["ai_provider_token"]
	assert.False(t, hasAI)
}

func TestAPITokensClient_Test(t *testing.T) {
	h := newHarness(t, regularUser())
	h.backend.on(http.MethodPost, "/api/user/api-tokens/test/ai_provider", http.StatusOK,
		`{"success":true,"data":{"valid":false,"message":"Токен отозван"}}`)
	client := NewAPITokensClient(h.deps)

	_, err := client.Test(context.Background(), "bogus")
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
	assert.Empty(t, h.backend.calls())

	result, err := client.Test(context.Background(), domain.TokenKindAIProvider)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, "Токен отозван", result.Message)
}

func TestOriginsClient_List(t *testing.T) {
	h := newHarness(t, adminUser())
	h.backend.on(http.MethodGet, "/api/admin/origin-requests", http.StatusOK,
		`{"success":true,"data":[{"id":"o1","service_id":"svc-1","origin":"https://shop.example.com","status":"pending"}]}`)
	client := NewOriginsClient(h.deps)

	requests, err := client.List(context.Background(), domain.OriginPending)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "https://shop.example.com", requests[0].Origin)
	assert.Equal(t, "status=pending", h.backend.last(t).Query)

	_, err = client.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, h.backend.last(t).Query)

	_, err = client.List(context.Background(), "archived")
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
	assert.Len(t, h.backend.calls(), 2)
}

func TestOriginsClient_Request(t *testing.T) {
	h := newHarness(t, regularUser())
	h.backend.on(http.MethodPost, "/api/origin-requests", http.StatusOK,
		`{"success":true,"data":{"id":"o2","service_id":"svc-1","origin":"https://shop.example.com","status":"pending"}}`)
	client := NewOriginsClient(h.deps)

	request, err := client.Request(context.Background(), "svc-1", " https://shop.example.com/ ")
	require.NoError(t, err)
	assert.Equal(t, domain.OriginPending, request.Status)
	assert.Equal(t, "https://shop.example.com", h.backend.last(t).Body["origin"])

	_, err = client.Request(context.Background(), "svc-1", "https://shop.example.com/cart")
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
	_, err = client.Request(context.Background(), "", "https://shop.example.com")
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
	assert.Len(t, h.backend.calls(), 1)
}

func TestOriginsClient_Moderation(t *testing.T) {
	h := newHarness(t, adminUser())
	h.backend.on(http.MethodPost, "/api/admin/origin-requests/o1/approve", http.StatusOK, `{"success":true}`)
	h.backend.on(http.MethodPost, "/api/admin/origin-requests/o2/reject", http.StatusOK, `{"success":true}`)
	client := NewOriginsClient(h.deps)

	require.NoError(t, client.Approve(context.Background(), "o1"))
	assert.Equal(t, "/api/admin/origin-requests/o1/approve", h.backend.last(t).Path)

	require.NoError(t, client.Reject(context.Background(), "o2", " спам "))
	assert.Equal(t, "спам", h.backend.last(t).Body["reason"])

	assert.True(t, errors.HasCode(client.Approve(context.Background(), ""), errors.ErrValidation))
}

func TestWebhooksClient_Create(t *testing.T) {
	h := newHarness(t, regularUser())
	h.backend.on(http.MethodPost, "/api/webhooks", http.StatusOK,
		`{"success":true,"data":{"id":"wh1","name":"n8n","url":"https://n8n.example.com/hook","is_active":true}}`)
	client := NewWebhooksClient(h.deps)
	ctx := context.Background()

	_, err := client.Create(ctx, domain.WebhookInput{Name: "n8n"})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
	_, err = client.Create(ctx, domain.WebhookInput{Name: "n8n", URL: "ftp://n8n.example.com"})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
	_, err = client.Create(ctx, domain.WebhookInput{Name: "n8n", URL: "https://n8n.example.com/hook", Events: []string{"deploy"}})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
	assert.Empty(t, h.backend.calls())

	webhook, err := client.Create(ctx, domain.WebhookInput{
		Name:   " n8n ",
		URL:    "https://n8n.example.com/hook",
		Events: []string{EventEscalation, EventTicketCreated},
	})
	require.NoError(t, err)
	assert.Equal(t, "wh1", webhook.ID)
	assert.Equal(t, "n8n", h.backend.last(t).Body["name"])
}

func TestWebhooksClient_UpdateDeleteTest(t *testing.T) {
	h := newHarness(t, adminUser())
	h.backend.on(http.MethodPut, "/api/admin/webhooks/wh1", http.StatusOK,
		`{"success":true,"data":{"id":"wh1","name":"n8n","is_active":false}}`)
	h.backend.on(http.MethodDelete, "/api/admin/webhooks/wh1", http.StatusOK, `{"success":true}`)
	h.backend.on(http.MethodPost, "/api/admin/webhooks/wh1/test", http.StatusOK,
		`{"success":true,"data":{"delivered":true,"status_code":200,"duration_ms":42}}`)
	client := NewWebhooksClient(h.deps)
	ctx := context.Background()

	_, err := client.Update(ctx, "wh1", domain.WebhookInput{})
	assert.True(t, errors.HasCode(err, errors.ErrValidation))
	assert.Empty(t, h.backend.calls())

	inactive := false
	webhook, err := client.Update(ctx, "wh1", domain.WebhookInput{Active: &inactive})
	require.NoError(t, err)
	assert.False(t, webhook.Active)
	assert.Equal(t, false, h.backend.last(t).Body["is_active"])

	result, err := client.Test(ctx, "wh1")
	require.NoError(t, err)
	assert.True(t, result.Delivered)
	assert.Equal(t, int64(42), result.DurationMs)

	require.NoError(t, client.Delete(ctx, "wh1"))
	assert.Equal(t, "/api/admin/webhooks/wh1", h.backend.last(t).Path)
}

func TestUsersClient_RequiresAdmin(t *testing.T) {
	h := newHarness(t, regularUser())
	client := NewUsersClient(h.deps)

	_, err := client.List(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrForbidden))

	_, err = client.UpdateRole(context.Background(), 3, domain.RoleAdmin)
	assert.True(t, errors.HasCode(err, errors.ErrForbidden))

	assert.Empty(t, h.backend.calls())
}

func TestUsersClient_WithoutSession(t *testing.T) {
	h := newHarness(t, nil)
	client := NewUsersClient(h.deps)

	var reasons []session.Reason
	h.session.OnLogout(func(reason session.Reason) { reasons = append(reasons, reason) })

	_, err := client.List(context.Background())
	assert.True(t, errors.HasCode(err, errors.ErrUnauthenticated))

	_, err = client.UpdateRole(context.Background(), 3, domain.RoleAdmin)
	assert.True(t, errors.HasCode(err, errors.ErrUnauthenticated))

	assert.Equal(t, []session.Reason{session.ReasonMissingToken, session.ReasonMissingToken}, reasons)
	assert.Empty(t, h.backend.calls())
}

func TestUsersClient_List(t *testing.T) {
	h := newHarness(t, adminUser())
	h.backend.on(http.MethodGet, "/api/admin/users", http.StatusOK,
		`{"success":true,"data":[{"id":1,"username":"alice","role":"user"},{"id":2,"username":"root","role":"admin"}]}`)

	users, err := NewUsersClient(h.deps).List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.True(t, users[1].IsAdmin())
}

func TestUsersClient_UpdateRole(t *testing.T) {
	h := newHarness(t, adminUser())
	h.backend.on(http.MethodPut, "/api/admin/users/1/role", http.StatusOK,
		`{"success":true,"data":{"id":1,"username":"alice","role":"admin"}}`)
	h.backend.on(http.MethodPut, "/api/admin/users/2/role", http.StatusOK, `{"success":true}`)
	client := NewUsersClient(h.deps)
	ctx := context.Background()

	_, err := client.UpdateRole(ctx, 1, domain.Role("owner"))
	assert.True(t, errors.HasCode(err, errors.ErrValidation))

	user, err := client.UpdateRole(ctx, 1, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "admin", h.backend.last(t).Body["role"])
	assert.Equal(t, domain.RoleAdmin, h.session.Role())

	// Понижение собственной роли сразу меняет семейство эндпоинтов
	user, err = client.UpdateRole(ctx, 2, domain.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, int64(2), user.ID)
	assert.Equal(t, domain.RoleUser, h.session.Role())

	_, err = client.List(ctx)
	assert.True(t, errors.HasCode(err, errors.ErrForbidden))
}
