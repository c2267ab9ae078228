package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// Metrics представляет систему метрик клиента
type Metrics struct {
	// Исходящие запросы к бэкенду
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsCount     *prometheus.CounterVec

	// Завершения сессии по причинам (logout, expired, missing_token)
	SessionTeardowns *prometheus.CounterVec
	// Уведомления, показанные пользователю
	Notifications *prometheus.CounterVec

	// OpenTelemetry Tracer
	Tracer trace.Tracer `json:"-"`

	registry *prometheus.Registry
}

// NewMetrics создает новую систему метрик на собственном реестре.
// Отдельный реестр позволяет создавать несколько экземпляров в одном процессе.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWithTracer(namespace, otel.Tracer(namespace))
}

// NewMetricsWithTracer создает систему метрик с явно заданным трейсером
func NewMetricsWithTracer(namespace string, tracer trace.Tracer) *Metrics {
	requestCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "requests_total",
			Help:      "Total number of backend calls passed through the gateway",
		},
		[]string{"method", "outcome"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "request_duration_seconds",
			Help:      "Duration of dispatched backend calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	errorsCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "gateway",
			Name:      "errors_total",
			Help:      "Total number of failed backend calls by error code",
		},
		[]string{"method", "code"},
	)

	sessionTeardowns := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "teardowns_total",
			Help:      "Total number of session teardowns by reason",
		},
		[]string{"reason"},
	)

	notifications := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "notify",
			Name:      "messages_total",
			Help:      "Total number of notifications shown by level",
		},
		[]string{"level"},
	)

	registry := prometheus.NewRegistry()
	registry.MustRegister(requestCount, requestDuration, errorsCount, sessionTeardowns, notifications)

	return &Metrics{
		RequestCount:     requestCount,
		RequestDuration:  requestDuration,
		ErrorsCount:      errorsCount,
		SessionTeardowns: sessionTeardowns,
		Notifications:    notifications,
		Tracer:           tracer,
		registry:         registry,
	}
}

// Registry возвращает реестр метрик
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// GetHandler возвращает HTTP обработчик для эндпоинта /metrics
func (m *Metrics) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRequest регистрирует завершенный вызов бэкенда.
// code пустой для успешных вызовов.
func (m *Metrics) ObserveRequest(method, code string, duration time.Duration, dispatched bool) {
	outcome := "success"
	if code != "" {
		outcome = "failure"
		m.ErrorsCount.WithLabelValues(method, code).Inc()
	}
	m.RequestCount.WithLabelValues(method, outcome).Inc()

	// Время наблюдаем только для запросов, ушедших в сеть
	if dispatched {
		m.RequestDuration.WithLabelValues(method).Observe(duration.Seconds())
	}
}

// SessionTeardown регистрирует завершение сессии
func (m *Metrics) SessionTeardown(reason string) {
	m.SessionTeardowns.WithLabelValues(reason).Inc()
}

// NotificationShown регистрирует показанное уведомление
func (m *Metrics) NotificationShown(level string) {
	m.Notifications.WithLabelValues(level).Inc()
}

// InitializeOpenTelemetry устанавливает глобальный провайдер трассировки
func InitializeOpenTelemetry(serviceName, version string) (*tracesdk.TracerProvider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", serviceName),
			attribute.String("service.version", version),
		),
	)
	if err != nil {
		return nil, err
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.AlwaysSample()),
		tracesdk.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp, nil
}
