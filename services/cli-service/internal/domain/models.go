package domain

import (
	"encoding/json"
	"time"
)

// Service привязка AI ассистента к проекту и публичному чат эндпоинту.
// Принадлежит бэкенду, клиент держит только кэшированную копию.
type Service struct {
	ServiceID     string          `json:"service_id"`
	ServiceName   string          `json:"service_name"`
	AssistantID   string          `json:"assistant_id"`
	AssistantName string          `json:"assistant_name,omitempty"`
	ProjectKey    string          `json:"project_key,omitempty"`
	Active        bool            `json:"is_active"`
	OwnerID       int64           `json:"owner_id,omitempty"`
	LastUpdated   *time.Time      `json:"last_updated,omitempty"`
	Config        json.RawMessage `json:"config,omitempty"`
}

// ServiceInput тело запросов создания и обновления сервиса
type ServiceInput struct {
	ServiceName string          `json:"service_name,omitempty"`
	AssistantID string          `json:"assistant_id,omitempty"`
	ProjectKey  string          `json:"project_key,omitempty"`
	Active      *bool           `json:"is_active,omitempty"`
	Config      json.RawMessage `json:"config,omitempty"`
}

// Webhook пересылает события эскалации AI во внешнюю систему автоматизации
type Webhook struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	URL         string     `json:"url"`
	ServiceID   string     `json:"service_id,omitempty"`
	Events      []string   `json:"events,omitempty"`
	Active      bool       `json:"is_active"`
	HasSecret   bool       `json:"has_secret,omitempty"`
	LastTrigger *time.Time `json:"last_triggered_at,omitempty"`
}

// WebhookInput тело запросов создания и обновления вебхука
type WebhookInput struct {
	Name      string   `json:"name,omitempty"`
	URL       string   `json:"url,omitempty"`
	ServiceID string   `json:"service_id,omitempty"`
	Events    []string `json:"events,omitempty"`
	Secret    string   `json:"secret,omitempty"`
	Active    *bool    `json:"is_active,omitempty"`
}

// WebhookTestResult результат тестовой отправки вебхука
type WebhookTestResult struct {
	Delivered  bool   `json:"delivered"`
	StatusCode int    `json:"status_code,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	Response   string `json:"response,omitempty"`
}

// Статусы запросов cross-origin доступа
const (
	OriginPending  = "pending"
	OriginApproved = "approved"
	OriginRejected = "rejected"
)

// OriginRequest запрос на cross-origin доступ к публичному эндпоинту сервиса
type OriginRequest struct {
	ID          string     `json:"id"`
	ServiceID   string     `json:"service_id"`
	ServiceName string     `json:"service_name,omitempty"`
	Origin      string     `json:"origin"`
	Status      string     `json:"status"`
	RequestedAt *time.Time `json:"requested_at,omitempty"`
	Reason      string     `json:"reason,omitempty"`
}

// Assistant AI ассистент у провайдера
type Assistant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	ProjectKey string `json:"project_key,omitempty"`
}

// Project проект в трекере задач
type Project struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// Ticket задача в трекере, созданная эскалацией
type Ticket struct {
	Key        string     `json:"key"`
	Summary    string     `json:"summary"`
	Status     string     `json:"status"`
	ProjectKey string     `json:"project_key"`
	ServiceID  string     `json:"service_id,omitempty"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
}

// APITokens токены пользователя для трекера задач и AI провайдера
type APITokens struct {
	IssueTrackerURL   string `json:"issue_tracker_url,omitempty"`
	IssueTrackerEmail string `json:"issue_tracker_email,omitempty"`
	IssueTrackerToken string `json:"issue_tracker_token,omitempty"`
	AIProviderToken   string `json:"ai_provider_token,omitempty"`
}

// Виды токенов для проверки
const (
	TokenKindIssueTracker = "issue_tracker"
	TokenKindAIProvider   = "ai_provider"
)
