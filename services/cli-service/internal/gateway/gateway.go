package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/pkg/logger"
	"AssistantHubPlatform/pkg/metrics"
	"AssistantHubPlatform/services/cli-service/internal/session"
)

const (
	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
	headerRequestID     = "X-Request-ID"
	contentTypeJSON     = "application/json"
)

// Session часть сессии, нужная шлюзу
type Session interface {
	IsLoading() bool
	Token() string
	Logout(ctx context.Context, reason session.Reason) error
}

// Request описание одного вызова бэкенда
type Request struct {
	Method string
	// Endpoint абсолютный URL или путь относительно базового адреса
	Endpoint string
	// Body сериализуется в JSON; []byte и json.RawMessage отправляются как есть
	Body    interface{}
	Headers map[string]string
	// Public вызов без авторизации; по умолчанию авторизация обязательна
	Public bool
}

// Config параметры шлюза
type Config struct {
	BaseURL string
	Timeout time.Duration
	Version string
}

// Gateway единственная точка, через которую идут вызовы бэкенда
type Gateway struct {
	baseURL   string
	userAgent string
	client    *http.Client
	session   Session
	logger    logger.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// Option настройка шлюза
type Option func(*Gateway)

// WithHTTPClient задает HTTP клиент
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithLogger задает логгер
func WithLogger(log logger.Logger) Option {
	return func(g *Gateway) {
		if log != nil {
			g.logger = log
		}
	}
}

// WithMetrics задает метрики и трейсер из них
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) {
		g.metrics = m
		if m != nil && m.Tracer != nil {
			g.tracer = m.Tracer
		}
	}
}

// New создает шлюз
func New(cfg Config, sess Session, opts ...Option) *Gateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	g := &Gateway{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: "AssistantHub-CLI/" + version,
		client:    &http.Client{Timeout: timeout},
		session:   sess,
		logger:    logger.NewNop(),
		tracer:    otel.Tracer("assistanthub/gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// BaseURL возвращает базовый адрес бэкенда
func (g *Gateway) BaseURL() string {
	return g.baseURL
}

// Do выполняет вызов. Любая ошибка имеет тип *errors.Error.
// При ошибке приложения вместе с ней возвращается разобранный конверт.
func (g *Gateway) Do(ctx context.Context, req Request) (*Envelope, error) {
	start := time.Now()
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	ctx, span := g.tracer.Start(ctx, "gateway "+method, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("gateway.endpoint", req.Endpoint),
		attribute.Bool("gateway.require_auth", !req.Public),
	)

	env, dispatched, err := g.do(ctx, method, req, span)

	code := ""
	if err != nil {
		code = string(errors.CodeOf(err))
		span.SetStatus(codes.Error, code)
		span.SetAttributes(attribute.String("gateway.error_code", code))
	}
	if g.metrics != nil {
		g.metrics.ObserveRequest(method, code, time.Since(start), dispatched)
	}
	return env, err
}

func (g *Gateway) do(ctx context.Context, method string, req Request, span trace.Span) (*Envelope, bool, error) {
	// Проверки до отправки: без токена запрос в сеть не уходит
	if !req.Public {
		if g.session.IsLoading() {
			return nil, false, errors.New(errors.ErrAuthPending, "сессия еще восстанавливается")
		}
		if g.session.Token() == "" {
			g.teardown(ctx, session.ReasonMissingToken)
			return nil, false, errors.New(errors.ErrUnauthenticated, "требуется авторизация")
		}
	}

	httpReq, err := g.newRequest(ctx, method, req)
	if err != nil {
		return nil, false, err
	}
	span.SetAttributes(attribute.String("gateway.request_id", httpReq.Header.Get(headerRequestID)))

	if err := ctx.Err(); err != nil {
		return nil, false, errors.Wrap(err, errors.ErrTransport, "запрос отменен")
	}

	started := time.Now()
	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Debug("Ошибка соединения с бэкендом",
			logger.String("method", method),
			logger.String("endpoint", req.Endpoint),
			logger.Error(err),
		)
		return nil, true, errors.Wrap(err, errors.ErrTransport, "ошибка соединения с сервером")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.Wrap(err, errors.ErrTransport, "ошибка чтения ответа").WithStatus(resp.StatusCode)
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	g.logger.Debug("Ответ бэкенда",
		logger.String("method", method),
		logger.String("endpoint", req.Endpoint),
		logger.Int("status", resp.StatusCode),
		logger.Duration("duration", time.Since(started)),
		logger.String("request_id", httpReq.Header.Get(headerRequestID)),
	)

	// 401 на авторизованном вызове завершает сессию независимо от тела
	if resp.StatusCode == http.StatusUnauthorized && !req.Public {
		g.teardown(ctx, session.ReasonExpired)
		return nil, true, errors.New(errors.ErrSessionExpired, "сессия истекла").WithStatus(resp.StatusCode)
	}

	env, err := parseEnvelope(resp, body)
	if err != nil {
		return nil, true, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := env.backendMessage()
		if message == "" {
			message = fmt.Sprintf("сервер вернул статус %s", resp.Status)
		}
		return env, true, errors.New(errors.ErrApplication, message).WithStatus(resp.StatusCode)
	}
	if !env.Success {
		message := env.backendMessage()
		if message == "" {
			message = "сервер не подтвердил выполнение запроса"
		}
		return env, true, errors.New(errors.ErrApplication, message).WithStatus(resp.StatusCode)
	}

	return env, true, nil
}

func (g *Gateway) newRequest(ctx context.Context, method string, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		var payload []byte
		switch b := req.Body.(type) {
		case json.RawMessage:
			payload = b
		case []byte:
			payload = b
		default:
			encoded, err := json.Marshal(b)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrValidation, "ошибка кодирования тела запроса")
			}
			payload = encoded
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, g.resolve(req.Endpoint), body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, "ошибка создания запроса")
	}

	// Заголовки вызывающего добавляются первыми: обязательные их перекрывают
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}
	httpReq.Header.Set(headerContentType, contentTypeJSON)
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("User-Agent", g.userAgent)
	if token := g.session.Token(); token != "" {
		httpReq.Header.Set(headerAuthorization, "Bearer "+token)
	}
	if httpReq.Header.Get(headerRequestID) == "" {
		httpReq.Header.Set(headerRequestID, uuid.NewString())
	}
	return httpReq, nil
}

// resolve строит абсолютный URL
func (g *Gateway) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return g.baseURL + endpoint
}

// teardown завершает сессию; отмена контекста вызова не должна мешать очистке
func (g *Gateway) teardown(ctx context.Context, reason session.Reason) {
	if err := g.session.Logout(context.WithoutCancel(ctx), reason); err != nil {
		g.logger.Warn("Ошибка завершения сессии", logger.String("reason", string(reason)), logger.Error(err))
	}
}

func parseEnvelope(resp *http.Response, body []byte) (*Envelope, error) {
	// 204 не несет тела: считаем его подтвержденным успехом
	if resp.StatusCode == http.StatusNoContent && len(bytes.TrimSpace(body)) == 0 {
		return &Envelope{Success: true, Status: resp.StatusCode}, nil
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrParse, resp.Status).WithStatus(resp.StatusCode)
	}
	env.Status = resp.StatusCode
	env.Raw = json.RawMessage(body)
	return &env, nil
}

// Get авторизованный GET
func (g *Gateway) Get(ctx context.Context, endpoint string) (*Envelope, error) {
	return g.Do(ctx, Request{Method: http.MethodGet, Endpoint: endpoint})
}

// Post авторизованный POST
func (g *Gateway) Post(ctx context.Context, endpoint string, body interface{}) (*Envelope, error) {
	return g.Do(ctx, Request{Method: http.MethodPost, Endpoint: endpoint, Body: body})
}

// Put авторизованный PUT
func (g *Gateway) Put(ctx context.Context, endpoint string, body interface{}) (*Envelope, error) {
	return g.Do(ctx, Request{Method: http.MethodPut, Endpoint: endpoint, Body: body})
}

// Delete авторизованный DELETE
func (g *Gateway) Delete(ctx context.Context, endpoint string) (*Envelope, error) {
	return g.Do(ctx, Request{Method: http.MethodDelete, Endpoint: endpoint})
}

// PublicGet GET без авторизации
func (g *Gateway) PublicGet(ctx context.Context, endpoint string) (*Envelope, error) {
	return g.Do(ctx, Request{Method: http.MethodGet, Endpoint: endpoint, Public: true})
}

// PublicPost POST без авторизации
func (g *Gateway) PublicPost(ctx context.Context, endpoint string, body interface{}) (*Envelope, error) {
	return g.Do(ctx, Request{Method: http.MethodPost, Endpoint: endpoint, Body: body, Public: true})
}
