package client

import (
	"context"
	"net/url"
	"strings"

	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/endpoints"
)

var originStatuses = []string{domain.OriginPending, domain.OriginApproved, domain.OriginRejected}

// OriginsClient модерация запросов cross-origin доступа
type OriginsClient struct {
	base
}

// NewOriginsClient создает клиент запросов доступа
func NewOriginsClient(deps Deps) *OriginsClient {
	return &OriginsClient{base: newBase(deps)}
}

// List возвращает запросы; пустой статус возвращает все
func (c *OriginsClient) List(ctx context.Context, status string) ([]domain.OriginRequest, error) {
	if status != "" {
		if err := c.validator.ValidateEnum(status, originStatuses, "status"); err != nil {
			return nil, invalid(err)
		}
	}

	endpoint, err := c.endpoint(endpoints.OriginRequests)
	if err != nil {
		return nil, err
	}
	if status != "" {
		endpoint += "?" + url.Values{"status": {status}}.Encode()
	}

	var requests []domain.OriginRequest
	if err := c.get(ctx, endpoint, &requests); err != nil {
		return nil, err
	}
	return requests, nil
}

// Request запрашивает доступ origin к публичному эндпоинту сервиса
func (c *OriginsClient) Request(ctx context.Context, serviceID, origin string) (*domain.OriginRequest, error) {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	err := c.validator.ValidateRequiredFields(
		map[string]interface{}{"service_id": serviceID},
		map[string]string{"service_id": "service id"},
	)
	if err != nil {
		return nil, invalid(err)
	}
	if err := c.validator.ValidateOrigin(origin); err != nil {
		return nil, invalid(err)
	}

	endpoint, err := c.endpoint(endpoints.OriginRequests)
	if err != nil {
		return nil, err
	}
	var request domain.OriginRequest
	body := map[string]string{"service_id": serviceID, "origin": origin}
	if err := c.post(ctx, endpoint, body, &request); err != nil {
		return nil, err
	}
	return &request, nil
}

// Approve одобряет запрос
func (c *OriginsClient) Approve(ctx context.Context, id string) error {
	endpoint, err := c.endpoint(endpoints.OriginApprove, id)
	if err != nil {
		return err
	}
	return c.post(ctx, endpoint, nil, nil)
}

// Reject отклоняет запрос с необязательной причиной
func (c *OriginsClient) Reject(ctx context.Context, id, reason string) error {
	endpoint, err := c.endpoint(endpoints.OriginReject, id)
	if err != nil {
		return err
	}
	var body interface{}
	if reason = strings.TrimSpace(reason); reason != "" {
		body = map[string]string{"reason": reason}
	}
	return c.post(ctx, endpoint, body, nil)
}
