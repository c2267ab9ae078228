package session

import (
	"context"
	"sync"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/pkg/logger"
	"AssistantHubPlatform/pkg/metrics"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/store"
)

// Reason причина завершения сессии
type Reason string

const (
	// ReasonUser пользователь вышел сам
	ReasonUser Reason = "logout"
	// ReasonExpired бэкенд ответил 401
	ReasonExpired Reason = "expired"
	// ReasonMissingToken запрос требовал авторизации, а токена нет
	ReasonMissingToken Reason = "missing_token"
)

// Persister долговременное хранилище пары токен + пользователь
type Persister interface {
	Save(ctx context.Context, token string, user *domain.User) error
	SaveUser(ctx context.Context, user *domain.User) error
	Load(ctx context.Context) (*store.Credentials, error)
	Clear(ctx context.Context) error
}

// LogoutHook вызывается после каждого logout: аналог перехода на экран входа
type LogoutHook func(reason Reason)

// State снимок состояния сессии
type State struct {
	Token           string
	User            *domain.User
	IsLoading       bool
	IsAuthenticated bool
}

// Session владеет токеном и пользователем. Изменяется только через
// Restore, Login, Logout и UpdateUser.
type Session struct {
	// writeMu упорядочивает изменения вместе с записью в хранилище
	writeMu sync.Mutex
	mu      sync.RWMutex

	persister Persister
	logger    logger.Logger
	metrics   *metrics.Metrics
	hooks     []LogoutHook

	token   string
	user    *domain.User
	loading bool
}

// Option настройка сессии
type Option func(*Session)

// WithLogger задает логгер
func WithLogger(log logger.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.logger = log
		}
	}
}

// WithMetrics задает метрики завершения сессии
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Session) {
		s.metrics = m
	}
}

// WithLogoutHook добавляет обработчик завершения сессии
func WithLogoutHook(hook LogoutHook) Option {
	return func(s *Session) {
		if hook != nil {
			s.hooks = append(s.hooks, hook)
		}
	}
}

// New создает сессию в состоянии загрузки. Состояние разрешает Restore.
func New(persister Persister, opts ...Option) *Session {
	s := &Session{
		persister: persister,
		logger:    logger.NewNop(),
		loading:   true,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnLogout регистрирует обработчик завершения сессии
func (s *Session) OnLogout(hook LogoutHook) {
	if hook == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, hook)
}

// Restore читает сохраненную сессию. Любая ошибка чтения оставляет
// сессию неаутентифицированной; загрузка завершается в любом случае.
func (s *Session) Restore(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	creds, err := s.persister.Load(ctx)

	var result error
	switch {
	case errors.HasCode(err, store.ErrCorrupt.Code):
		s.logger.Warn("Сохраненная сессия повреждена, сбрасываем", logger.Error(err))
		if clearErr := s.persister.Clear(ctx); clearErr != nil {
			s.logger.Warn("Не удалось очистить поврежденную сессию", logger.Error(clearErr))
		}
		creds = nil
	case err != nil:
		s.logger.Warn("Не удалось прочитать сохраненную сессию", logger.Error(err))
		result = err
		creds = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if creds == nil {
		s.token = ""
		s.user = nil
		return result
	}
	s.token = creds.Token
	s.user = creds.User.Clone()
	s.logger.Debug("Сессия восстановлена", logger.String("username", creds.User.Username))
	return nil
}

// Login сохраняет подтвержденную бэкендом пару и делает сессию аутентифицированной.
// Учетные данные здесь не проверяются.
func (s *Session) Login(ctx context.Context, token string, user *domain.User) error {
	if user.IsEmpty() {
		return errors.New(errors.ErrValidation, "пустая запись пользователя")
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.persister.Save(ctx, token, user); err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user.Clone()
	s.loading = false
	s.mu.Unlock()

	s.logger.Info("Вход выполнен", logger.String("username", user.Username), logger.String("role", string(user.Role)))
	return nil
}

// Logout очищает хранилище и состояние, затем вызывает обработчики.
// Повторный вызов безопасен; обработчики вызываются при каждом вызове.
func (s *Session) Logout(ctx context.Context, reason Reason) error {
	s.writeMu.Lock()
	clearErr := s.persister.Clear(ctx)

	s.mu.Lock()
	wasAuthenticated := s.token != "" && !s.user.IsEmpty()
	s.token = ""
	s.user = nil
	s.loading = false
	hooks := make([]LogoutHook, len(s.hooks))
	copy(hooks, s.hooks)
	s.mu.Unlock()
	s.writeMu.Unlock()

	if wasAuthenticated {
		s.logger.Warn("Сессия завершена", logger.String("reason", string(reason)))
	}
	if s.metrics != nil {
		s.metrics.SessionTeardown(string(reason))
	}
	if clearErr != nil {
		s.logger.Error("Ошибка очистки хранилища сессии", logger.Error(clearErr))
	}

	for _, hook := range hooks {
		hook(reason)
	}
	return clearErr
}

// UpdateUser сливает патч с текущим пользователем и сохраняет результат.
// Без загруженного пользователя ничего не делает.
func (s *Session) UpdateUser(ctx context.Context, patch domain.UserPatch) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.RLock()
	current := s.user.Clone()
	s.mu.RUnlock()
	if current == nil {
		return nil
	}

	patch.Apply(current)
	if err := s.persister.SaveUser(ctx, current); err != nil {
		return err
	}

	s.mu.Lock()
	s.user = current
	s.mu.Unlock()
	return nil
}

// Snapshot возвращает копию текущего состояния
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return State{
		Token:           s.token,
		User:            s.user.Clone(),
		IsLoading:       s.loading,
		IsAuthenticated: s.token != "" && !s.user.IsEmpty(),
	}
}

// Token возвращает текущий токен или пустую строку
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User возвращает копию текущего пользователя или nil
func (s *Session) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

// IsAuthenticated истинно, только если есть и токен, и пользователь
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && !s.user.IsEmpty()
}

// IsLoading истинно до завершения Restore
func (s *Session) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Role возвращает роль пользователя; без пользователя роль user
func (s *Session) Role() domain.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil || s.user.Role == "" {
		return domain.RoleUser
	}
	return s.user.Role
}
