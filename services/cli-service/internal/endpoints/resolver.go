package endpoints

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/domain"
)

// Resource ресурс бэкенда, у которого могут быть разные эндпоинты для ролей
type Resource string

const (
	Services       Resource = "services"
	Service        Resource = "service"
	ServiceToggle  Resource = "service_toggle"
	Tickets        Resource = "tickets"
	Assistants     Resource = "assistants"
	Projects       Resource = "projects"
	Webhooks       Resource = "webhooks"
	Webhook        Resource = "webhook"
	WebhookTest    Resource = "webhook_test"
	OriginRequests Resource = "origin_requests"
	OriginApprove  Resource = "origin_approve"
	OriginReject   Resource = "origin_reject"
	Users          Resource = "users"
	UserRole       Resource = "user_role"
)

type routeKey struct {
	resource Resource
	role     domain.Role
}

// routes единственное место, где роль выбирает семейство эндпоинтов
var routes = map[routeKey]string{
	{Services, domain.RoleAdmin}: "/api/admin/services",
	{Services, domain.RoleUser}:  "/api/services",

	{Service, domain.RoleAdmin}: "/api/admin/services/{id}",
	{Service, domain.RoleUser}:  "/api/services/{id}",

	{ServiceToggle, domain.RoleAdmin}: "/api/admin/services/{id}/toggle",
	{ServiceToggle, domain.RoleUser}:  "/api/services/{id}/toggle",

	{Tickets, domain.RoleAdmin}: "/api/admin/tickets/{project}",
	{Tickets, domain.RoleUser}:  "/api/tickets/{project}",

	{Assistants, domain.RoleAdmin}: "/api/assistants",
	{Assistants, domain.RoleUser}:  "/api/assistants",

	{Projects, domain.RoleAdmin}: "/api/projects",
	{Projects, domain.RoleUser}:  "/api/projects",

	{Webhooks, domain.RoleAdmin}: "/api/admin/webhooks",
	{Webhooks, domain.RoleUser}:  "/api/webhooks",

	{Webhook, domain.RoleAdmin}: "/api/admin/webhooks/{id}",
	{Webhook, domain.RoleUser}:  "/api/webhooks/{id}",

	{WebhookTest, domain.RoleAdmin}: "/api/admin/webhooks/{id}/test",
	{WebhookTest, domain.RoleUser}:  "/api/webhooks/{id}/test",

	{OriginRequests, domain.RoleAdmin}: "/api/admin/origin-requests",
	{OriginRequests, domain.RoleUser}:  "/api/origin-requests",

	{OriginApprove, domain.RoleAdmin}: "/api/admin/origin-requests/{id}/approve",
	{OriginApprove, domain.RoleUser}:  "/api/origin-requests/{id}/approve",

	{OriginReject, domain.RoleAdmin}: "/api/admin/origin-requests/{id}/reject",
	{OriginReject, domain.RoleUser}:  "/api/origin-requests/{id}/reject",

	// Управление пользователями есть только у администратора
	{Users, domain.RoleAdmin}:    "/api/admin/users",
	{UserRole, domain.RoleAdmin}: "/api/admin/users/{id}/role",
}

var placeholderPattern = regexp.MustCompile(`\{[a-z_]+\}`)

// Resolver строит URL ресурса для роли
type Resolver struct {
	baseURL string
}

// NewResolver создает резолвер для базового адреса бэкенда
func NewResolver(baseURL string) *Resolver {
	return &Resolver{baseURL: strings.TrimRight(baseURL, "/")}
}

// Resolve возвращает абсолютный URL. Неизвестная роль получает эндпоинты user.
// Параметры подставляются в шаблон по порядку и экранируются.
func (r *Resolver) Resolve(resource Resource, role domain.Role, params ...string) (string, error) {
	path, err := Path(resource, role, params...)
	if err != nil {
		return "", err
	}
	return r.baseURL + path, nil
}

// Path возвращает путь без базового адреса
func Path(resource Resource, role domain.Role, params ...string) (string, error) {
	if !role.Valid() {
		role = domain.RoleUser
	}

	template, ok := routes[routeKey{resource, role}]
	if !ok {
		return "", errors.New(errors.ErrForbidden,
			fmt.Sprintf("ресурс %s недоступен для роли %s", resource, role))
	}

	placeholders := placeholderPattern.FindAllString(template, -1)
	if len(placeholders) != len(params) {
		return "", errors.New(errors.ErrValidation,
			fmt.Sprintf("ресурс %s ожидает %d параметров, получено %d", resource, len(placeholders), len(params)))
	}

	path := template
	for i, placeholder := range placeholders {
		if params[i] == "" {
			return "", errors.New(errors.ErrValidation,
				fmt.Sprintf("пустой параметр %s для ресурса %s", placeholder, resource))
		}
		path = strings.Replace(path, placeholder, url.PathEscape(params[i]), 1)
	}
	return path, nil
}
