package client

import (
	"context"
	"net/http"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/pkg/logger"
	"AssistantHubPlatform/pkg/validation"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/endpoints"
	"AssistantHubPlatform/services/cli-service/internal/gateway"
	"AssistantHubPlatform/services/cli-service/internal/session"
)

// Gateway шлюз запросов к бэкенду
type Gateway interface {
	Do(ctx context.Context, req gateway.Request) (*gateway.Envelope, error)
}

// Session операции сессии, доступные потребителям
type Session interface {
	Role() domain.Role
	User() *domain.User
	IsAuthenticated() bool
	Login(ctx context.Context, token string, user *domain.User) error
	Logout(ctx context.Context, reason session.Reason) error
	UpdateUser(ctx context.Context, patch domain.UserPatch) error
}

// Deps зависимости, общие для всех клиентов
type Deps struct {
	Gateway  Gateway
	Session  Session
	Resolver *endpoints.Resolver
	Logger   logger.Logger
}

// base общая часть клиентов
type base struct {
	gw        Gateway
	session   Session
	resolver  *endpoints.Resolver
	logger    logger.Logger
	validator *validation.Validator
}

func newBase(deps Deps) base {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	return base{
		gw:        deps.Gateway,
		session:   deps.Session,
		resolver:  deps.Resolver,
		logger:    log,
		validator: validation.NewValidator(),
	}
}

// endpoint адрес ресурса для роли текущего пользователя
func (b *base) endpoint(resource endpoints.Resource, params ...string) (string, error) {
	return b.resolver.Resolve(resource, b.session.Role(), params...)
}

// call выполняет запрос и разбирает данные ответа в out, если он задан
func (b *base) call(ctx context.Context, method, endpoint string, body, out interface{}) error {
	env, err := b.gw.Do(ctx, gateway.Request{Method: method, Endpoint: endpoint, Body: body})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return gateway.DecodeData(env, out)
}

func (b *base) get(ctx context.Context, endpoint string, out interface{}) error {
	return b.call(ctx, http.MethodGet, endpoint, nil, out)
}

func (b *base) post(ctx context.Context, endpoint string, body, out interface{}) error {
	return b.call(ctx, http.MethodPost, endpoint, body, out)
}

func (b *base) put(ctx context.Context, endpoint string, body, out interface{}) error {
	return b.call(ctx, http.MethodPut, endpoint, body, out)
}

func (b *base) delete(ctx context.Context, endpoint string) error {
	return b.call(ctx, http.MethodDelete, endpoint, nil, nil)
}

// invalid приводит ошибку валидатора к ошибке валидации
func invalid(err error) error {
	if err == nil {
		return nil
	}
	return errors.New(errors.ErrValidation, err.Error())
}

// cancelled проверяет контекст перед изменением локального состояния после ответа
func cancelled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrTransport, "запрос отменен")
	}
	return nil
}
