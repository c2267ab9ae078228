package client

import (
	"context"
	"strings"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/domain"
)

const apiTokensPath = "/api/user/api-tokens"

// TokenTestResult результат проверки токена внешней системы
type TokenTestResult struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

// APITokensClient токены пользователя для трекера задач и AI провайдера
type APITokensClient struct {
	base
}

// NewAPITokensClient создает клиент токенов
func NewAPITokensClient(deps Deps) *APITokensClient {
	return &APITokensClient{base: newBase(deps)}
}

// Get возвращает сохраненные токены; секреты замаскированы
func (c *APITokensClient) Get(ctx context.Context) (*domain.APITokens, error) {
	var tokens domain.APITokens
	if err := c.get(ctx, apiTokensPath, &tokens); err != nil {
		return nil, err
	}
	tokens.IssueTrackerToken = MaskSecret(tokens.IssueTrackerToken)
	tokens.AIProviderToken = MaskSecret(tokens.AIProviderToken)
	return &tokens, nil
}

// Save сохраняет токены; пустые поля не меняются на бэкенде
func (c *APITokensClient) Save(ctx context.Context, tokens domain.APITokens) error {
	if tokens == (domain.APITokens{}) {
		return errors.New(errors.ErrValidation, "нет токенов для сохранения")
	}
	if tokens.IssueTrackerURL != "" {
		if err := c.validator.ValidateURL(tokens.IssueTrackerURL, []string{"https", "http"}); err != nil {
			return invalid(err)
		}
	}
	if tokens.IssueTrackerEmail != "" {
		if err := c.validator.ValidateEmail(tokens.IssueTrackerEmail); err != nil {
			return invalid(err)
		}
	}
	return c.put(ctx, apiTokensPath, tokens, nil)
}

// Test проверяет сохраненный токен указанного вида
func (c *APITokensClient) Test(ctx context.Context, kind string) (*TokenTestResult, error) {
	err := c.validator.ValidateEnum(kind, []string{domain.TokenKindIssueTracker, domain.TokenKindAIProvider}, "token kind")
	if err != nil {
		return nil, invalid(err)
	}

	var result TokenTestResult
	if err := c.post(ctx, apiTokensPath+"/test/"+kind, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MaskSecret оставляет видимыми только последние четыре символа
func MaskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}
