package notify

import (
	"sync"
	"time"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/pkg/metrics"
)

// Level уровень уведомления
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// DefaultTTL время показа уведомления по умолчанию
const DefaultTTL = 5 * time.Second

// Notification одно уведомление
type Notification struct {
	ID        uint64
	Level     Level
	Message   string
	CreatedAt time.Time
}

// Sink получает каждое уведомление в момент показа
type Sink interface {
	Notify(n Notification)
}

// Notifier общий сервис уведомлений с единой политикой времени жизни.
// Новое уведомление заменяет текущее вместе с его таймером.
type Notifier struct {
	mu      sync.Mutex
	ttl     time.Duration
	seq     uint64
	current *Notification
	timer   *time.Timer

	sinks   []Sink
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option настройка сервиса уведомлений
type Option func(*Notifier)

// WithSink добавляет получателя уведомлений
func WithSink(sink Sink) Option {
	return func(n *Notifier) {
		if sink != nil {
			n.sinks = append(n.sinks, sink)
		}
	}
}

// WithMetrics задает счетчик показанных уведомлений
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Notifier) {
		n.metrics = m
	}
}

// New создает сервис уведомлений; ttl <= 0 заменяется на DefaultTTL
func New(ttl time.Duration, opts ...Option) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	n := &Notifier{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// TTL возвращает время жизни уведомления
func (n *Notifier) TTL() time.Duration {
	return n.ttl
}

// Success показывает сообщение об успехе
func (n *Notifier) Success(message string) Notification {
	return n.show(LevelSuccess, message)
}

// Error показывает сообщение об ошибке
func (n *Notifier) Error(message string) Notification {
	return n.show(LevelError, message)
}

// Info показывает информационное сообщение
func (n *Notifier) Info(message string) Notification {
	return n.show(LevelInfo, message)
}

// Fail показывает пользовательское сообщение ошибки
func (n *Notifier) Fail(err error) Notification {
	return n.show(LevelError, UserMessage(err))
}

// UserMessage текст ошибки для пользователя
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	return errors.Failure(err).Error
}

func (n *Notifier) show(level Level, message string) Notification {
	n.mu.Lock()
	n.seq++
	notification := Notification{
		ID:        n.seq,
		Level:     level,
		Message:   message,
		CreatedAt: n.now(),
	}
	n.current = &notification

	if n.timer != nil {
		n.timer.Stop()
	}
	id := notification.ID
	n.timer = time.AfterFunc(n.ttl, func() { n.expire(id) })
	sinks := n.sinks
	n.mu.Unlock()

	if n.metrics != nil {
		n.metrics.NotificationShown(string(level))
	}
	for _, sink := range sinks {
		sink.Notify(notification)
	}
	return notification
}

// expire убирает уведомление, если его еще не заменили
func (n *Notifier) expire(id uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current != nil && n.current.ID == id {
		n.current = nil
		n.timer = nil
	}
}

// Current возвращает видимое уведомление
func (n *Notifier) Current() (Notification, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == nil {
		return Notification{}, false
	}
	return *n.current, true
}

// Dismiss убирает текущее уведомление
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
}
