package client

import (
	"context"
	"encoding/json"
	"strings"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/endpoints"
)

// ServicesClient управление сервисами; эндпоинты зависят от роли
type ServicesClient struct {
	base
}

// NewServicesClient создает клиент сервисов
func NewServicesClient(deps Deps) *ServicesClient {
	return &ServicesClient{base: newBase(deps)}
}

// List возвращает сервисы, видимые пользователю
func (c *ServicesClient) List(ctx context.Context) ([]domain.Service, error) {
	url, err := c.endpoint(endpoints.Services)
	if err != nil {
		return nil, err
	}
	var services []domain.Service
	if err := c.get(ctx, url, &services); err != nil {
		return nil, err
	}
	return services, nil
}

// Get возвращает сервис по идентификатору
func (c *ServicesClient) Get(ctx context.Context, id string) (*domain.Service, error) {
	url, err := c.endpoint(endpoints.Service, id)
	if err != nil {
		return nil, err
	}
	var service domain.Service
	if err := c.get(ctx, url, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// Create создает сервис
func (c *ServicesClient) Create(ctx context.Context, input domain.ServiceInput) (*domain.Service, error) {
	input.ServiceName = strings.TrimSpace(input.ServiceName)
	err := c.validator.ValidateRequiredFields(
		map[string]interface{}{"service_name": input.ServiceName, "assistant_id": input.AssistantID},
		map[string]string{"service_name": "service name", "assistant_id": "assistant id"},
	)
	if err != nil {
		return nil, invalid(err)
	}
	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	url, err := c.endpoint(endpoints.Services)
	if err != nil {
		return nil, err
	}
	var service domain.Service
	if err := c.post(ctx, url, input, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// Update изменяет сервис
func (c *ServicesClient) Update(ctx context.Context, id string, input domain.ServiceInput) (*domain.Service, error) {
	input.ServiceName = strings.TrimSpace(input.ServiceName)
	if err := c.validateInput(input); err != nil {
		return nil, err
	}

	url, err := c.endpoint(endpoints.Service, id)
	if err != nil {
		return nil, err
	}
	var service domain.Service
	if err := c.put(ctx, url, input, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// Toggle переключает активность сервиса
func (c *ServicesClient) Toggle(ctx context.Context, id string) (*domain.Service, error) {
	url, err := c.endpoint(endpoints.ServiceToggle, id)
	if err != nil {
		return nil, err
	}
	var service domain.Service
	if err := c.post(ctx, url, nil, &service); err != nil {
		return nil, err
	}
	return &service, nil
}

// Delete удаляет сервис
func (c *ServicesClient) Delete(ctx context.Context, id string) error {
	url, err := c.endpoint(endpoints.Service, id)
	if err != nil {
		return err
	}
	return c.delete(ctx, url)
}

func (c *ServicesClient) validateInput(input domain.ServiceInput) error {
	if input.ServiceName != "" {
		if err := c.validator.ValidateStringLength(input.ServiceName, "service name", 1, 100); err != nil {
			return invalid(err)
		}
	}
	if len(input.Config) > 0 && !json.Valid(input.Config) {
		return errors.New(errors.ErrValidation, "конфигурация сервиса должна быть JSON")
	}
	return nil
}
