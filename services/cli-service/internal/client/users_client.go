package client

import (
	"context"
	"strconv"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/pkg/logger"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/endpoints"
	"AssistantHubPlatform/services/cli-service/internal/session"
)

// UsersClient управление пользователями, только для администратора
type UsersClient struct {
	base
}

// NewUsersClient создает клиент пользователей
func NewUsersClient(deps Deps) *UsersClient {
	return &UsersClient{base: newBase(deps)}
}

// requireAdmin отклоняет вызов до сети, если пользователь не администратор.
// Без сессии ведет себя как шлюз: завершает сессию и возвращает UNAUTHENTICATED.
func (c *UsersClient) requireAdmin(ctx context.Context) error {
	if !c.session.IsAuthenticated() {
		if err := c.session.Logout(context.WithoutCancel(ctx), session.ReasonMissingToken); err != nil {
			c.logger.Warn("Ошибка завершения сессии", logger.Error(err))
		}
		return errors.New(errors.ErrUnauthenticated, "требуется авторизация")
	}
	if !c.session.User().IsAdmin() {
		return errors.New(errors.ErrForbidden, "операция доступна только администратору")
	}
	return nil
}

// List возвращает пользователей платформы
func (c *UsersClient) List(ctx context.Context) ([]domain.User, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return nil, err
	}
	endpoint, err := c.endpoint(endpoints.Users)
	if err != nil {
		return nil, err
	}
	var users []domain.User
	if err := c.get(ctx, endpoint, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateRole меняет роль пользователя. Изменение собственной роли
// отражается в сессии.
func (c *UsersClient) UpdateRole(ctx context.Context, id int64, role domain.Role) (*domain.User, error) {
	if err := c.requireAdmin(ctx); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, errors.New(errors.ErrValidation, "неизвестная роль: "+string(role))
	}

	endpoint, err := c.endpoint(endpoints.UserRole, strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := c.put(ctx, endpoint, map[string]domain.Role{"role": role}, &user); err != nil {
		return nil, err
	}
	if user.IsEmpty() {
		user.ID = id
		user.Role = role
	}

	if err := cancelled(ctx); err != nil {
		return nil, err
	}
	if current := c.session.User(); current != nil && current.ID == id {
		if err := c.session.UpdateUser(ctx, domain.UserPatch{Role: &role}); err != nil {
			return nil, err
		}
	}
	return &user, nil
}
