package client

import (
	"context"
	"strings"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/endpoints"
)

// События, которые бэкенд пересылает во внешние системы
const (
	EventEscalation    = "escalation"
	EventTicketCreated = "ticket_created"
	EventServiceError  = "service_error"
)

// WebhookEvents известные события вебхуков
var WebhookEvents = []string{EventEscalation, EventTicketCreated, EventServiceError}

// WebhooksClient управление вебхуками; эндпоинты зависят от роли
type WebhooksClient struct {
	base
}

// NewWebhooksClient создает клиент вебхуков
func NewWebhooksClient(deps Deps) *WebhooksClient {
	return &WebhooksClient{base: newBase(deps)}
}

// List возвращает вебхуки
func (c *WebhooksClient) List(ctx context.Context) ([]domain.Webhook, error) {
	endpoint, err := c.endpoint(endpoints.Webhooks)
	if err != nil {
		return nil, err
	}
	var webhooks []domain.Webhook
	if err := c.get(ctx, endpoint, &webhooks); err != nil {
		return nil, err
	}
	return webhooks, nil
}

// Create создает вебхук
func (c *WebhooksClient) Create(ctx context.Context, input domain.WebhookInput) (*domain.Webhook, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.URL = strings.TrimSpace(input.URL)
	err := c.validator.ValidateRequiredFields(
		map[string]interface{}{"name": input.Name, "url": input.URL},
		map[string]string{"name": "name", "url": "url"},
	)
	if err != nil {
		return nil, invalid(err)
	}
	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	endpoint, err := c.endpoint(endpoints.Webhooks)
	if err != nil {
		return nil, err
	}
	var webhook domain.Webhook
	if err := c.post(ctx, endpoint, input, &webhook); err != nil {
		return nil, err
	}
	return &webhook, nil
}

// Update изменяет вебхук
func (c *WebhooksClient) Update(ctx context.Context, id string, input domain.WebhookInput) (*domain.Webhook, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.URL = strings.TrimSpace(input.URL)
	if input.Name == "" && input.URL == "" && input.ServiceID == "" &&
		input.Events == nil && input.Secret == "" && input.Active == nil {
		return nil, errors.New(errors.ErrValidation, "нет полей для обновления")
	}
	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	endpoint, err := c.endpoint(endpoints.Webhook, id)
	if err != nil {
		return nil, err
	}
	var webhook domain.Webhook
	if err := c.put(ctx, endpoint, input, &webhook); err != nil {
		return nil, err
	}
	return &webhook, nil
}

// Delete удаляет вебхук
func (c *WebhooksClient) Delete(ctx context.Context, id string) error {
	endpoint, err := c.endpoint(endpoints.Webhook, id)
	if err != nil {
		return err
	}
	return c.delete(ctx, endpoint)
}

// Test отправляет тестовое событие на вебхук
func (c *WebhooksClient) Test(ctx context.Context, id string) (*domain.WebhookTestResult, error) {
	endpoint, err := c.endpoint(endpoints.WebhookTest, id)
	if err != nil {
		return nil, err
	}
	var result domain.WebhookTestResult
	if err := c.post(ctx, endpoint, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *WebhooksClient) validateInput(input domain.WebhookInput) error {
	if input.Name != "" {
		if err := c.validator.ValidateStringLength(input.Name, "name", 1, 100); err != nil {
			return invalid(err)
		}
	}
	if input.URL != "" {
		if err := c.validator.ValidateURL(input.URL, []string{"https", "http"}); err != nil {
			return invalid(err)
		}
	}
	for _, event := range input.Events {
		if err := c.validator.ValidateEnum(event, WebhookEvents, "event"); err != nil {
			return invalid(err)
		}
	}
	return nil
}
