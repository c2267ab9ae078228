package client

import (
	"context"
	"net/http"
	"strings"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/pkg/logger"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/gateway"
	"AssistantHubPlatform/services/cli-service/internal/session"
)

// Эндпоинты аутентификации одинаковы для всех ролей
const (
	loginPath  = "/api/auth/login"
	logoutPath = "/api/auth/logout"
	mePath     = "/api/auth/me"
)

// LoginResult ответ бэкенда на вход
type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthClient вход, выход и обновление записи пользователя
type AuthClient struct {
	base
}

// NewAuthClient создает клиент аутентификации
func NewAuthClient(deps Deps) *AuthClient {
	return &AuthClient{base: newBase(deps)}
}

// Login проверяет учетные данные на бэкенде и открывает сессию
func (c *AuthClient) Login(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	err := c.validator.ValidateRequiredFields(
		map[string]interface{}{"username": username, "password": password},
		map[string]string{"username": "username", "password": "password"},
	)
	if err != nil {
		return nil, invalid(err)
	}

	env, err := c.gw.Do(ctx, gateway.Request{
		Method:   http.MethodPost,
		Endpoint: loginPath,
		Body:     map[string]string{"username": username, "password": password},
		Public:   true,
	})
	if err != nil {
		return nil, err
	}

	var result LoginResult
	if err := gateway.DecodeData(env, &result); err != nil {
		return nil, err
	}
	if result.Token == "" || result.User.IsEmpty() {
		return nil, errors.New(errors.ErrParse, "ответ входа не содержит токен или пользователя")
	}

	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	if err := c.session.Login(ctx, result.Token, result.User); err != nil {
		return nil, err
	}
	return c.session.User(), nil
}

// Logout сообщает бэкенду о выходе и завершает сессию.
// Ошибка бэкенда не мешает локальному выходу.
func (c *AuthClient) Logout(ctx context.Context) error {
	if c.session.IsAuthenticated() {
		err := c.post(ctx, logoutPath, nil, nil)
		if errors.HasCode(err, errors.ErrSessionExpired) {
			// шлюз уже завершил сессию по 401
			return nil
		}
		if err != nil {
			c.logger.Warn("Бэкенд не подтвердил выход", logger.Error(err))
		}
	}
	return c.session.Logout(ctx, session.ReasonUser)
}

// Me загружает актуальную запись пользователя и переносит ее в сессию
func (c *AuthClient) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.get(ctx, mePath, &user); err != nil {
		return nil, err
	}
	if user.IsEmpty() {
		return nil, errors.New(errors.ErrParse, "ответ не содержит пользователя")
	}

	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	if err := c.session.UpdateUser(ctx, domain.PatchFromUser(user)); err != nil {
		return nil, err
	}
	return c.session.User(), nil
}
