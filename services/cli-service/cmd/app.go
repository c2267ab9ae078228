package cmd

import (
	"context"
	"fmt"

	"AssistantHubPlatform/pkg/database"
	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/pkg/health"
	"AssistantHubPlatform/pkg/logger"
	"AssistantHubPlatform/pkg/metrics"
	pkgredis "AssistantHubPlatform/pkg/redis"
	"AssistantHubPlatform/services/cli-service/internal/client"
	"AssistantHubPlatform/services/cli-service/internal/config"
	"AssistantHubPlatform/services/cli-service/internal/endpoints"
	"AssistantHubPlatform/services/cli-service/internal/gateway"
	climetrics "AssistantHubPlatform/services/cli-service/internal/metrics"
	"AssistantHubPlatform/services/cli-service/internal/notify"
	"AssistantHubPlatform/services/cli-service/internal/output"
	"AssistantHubPlatform/services/cli-service/internal/session"
	"AssistantHubPlatform/services/cli-service/internal/store"
)

const metricsNamespace = "assistanthub_console"

// App зависимости одной команды. Собирается один раз на вызов
// и передается обработчикам явно.
type App struct {
	Config   *config.Config
	Logger   logger.Logger
	Metrics  *metrics.Metrics
	Commands *climetrics.CLIMetrics
	Health   *health.CompositeHealthChecker
	Storage  store.Storage
	Session  *session.Session
	Gateway  *gateway.Gateway
	Resolver *endpoints.Resolver
	Notifier *notify.Notifier
	Printer  *output.Printer

	Auth      *client.AuthClient
	Profile   *client.ProfileClient
	APITokens *client.APITokensClient
	Services  *client.ServicesClient
	Origins   *client.OriginsClient
	Webhooks  *client.WebhooksClient
	Tickets   *client.TicketsClient
	Users     *client.UsersClient

	closers []func()
}

// loadConfig читает конфигурацию и применяет глобальные флаги
func loadConfig(opts *rootOptions) (*config.Config, error) {
	path := opts.v.GetString("config")
	if path == "" {
		var err error
		if path, err = config.GetConfigPath(); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, err.Error())
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, err.Error())
	}

	if v := opts.v.GetString("api.base_url"); v != "" {
		cfg.API.BaseURL = v
	}
	if v := opts.v.GetString("output.format"); v != "" {
		cfg.Output.Format = v
	}
	if opts.v.GetBool("debug") {
		cfg.Logger.Level = "debug"
	}
	if opts.v.GetBool("no_color") {
		cfg.Output.Colors = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, err.Error())
	}
	return cfg, nil
}

// NewApp собирает зависимости: конфигурация, логгер, хранилище, сессия,
// шлюз, резолвер, уведомления, клиенты
func NewApp(ctx context.Context, opts *rootOptions) (*App, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	format, err := output.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	colors := cfg.Output.Colors && output.DetectColors()

	appLogger, err := logger.NewLogger(logger.Options{
		Environment: cfg.Environment,
		Level:       cfg.Logger.Level,
		Component:   "cli",
		Output:      opts.stderr,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка инициализации логгера")
	}

	app := &App{
		Config:  cfg,
		Logger:  appLogger,
		Metrics: metrics.NewMetrics(metricsNamespace),
		Health:  health.NewCompositeHealthChecker(Version),
		Printer: output.NewPrinter(opts.stdout, format, colors),
	}
	app.Commands = climetrics.NewCLIMetrics(metricsNamespace, app.Metrics, appLogger)
	app.closers = append(app.closers, func() { _ = appLogger.Sync() })

	if err := app.openStorage(ctx); err != nil {
		app.Close()
		return nil, err
	}

	notifyOpts := []notify.Option{
		notify.WithSink(notify.NewLoggerSink(appLogger)),
		notify.WithMetrics(app.Metrics),
	}
	if format == output.FormatTable {
		notifyOpts = append(notifyOpts, notify.WithSink(notify.NewTerminalSink(opts.stdout, colors)))
	}
	app.Notifier = notify.New(cfg.NotifyTTL(), notifyOpts...)
	app.closers = append(app.closers, app.Notifier.Dismiss)

	app.Session = session.New(
		store.NewTokenStore(app.Storage),
		session.WithLogger(appLogger),
		session.WithMetrics(app.Metrics),
		session.WithLogoutHook(func(reason session.Reason) {
			appLogger.Info("Сессия завершена", logger.String("reason", string(reason)))
		}),
	)
	if err := app.Session.Restore(ctx); err != nil {
		// Консоль продолжает работу без сессии, команды с авторизацией вернут UNAUTHENTICATED
		appLogger.Warn("Сессия не восстановлена", logger.Error(err))
	}

	app.Gateway = gateway.New(
		gateway.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.Timeout(), Version: Version},
		app.Session,
		gateway.WithLogger(appLogger),
		gateway.WithMetrics(app.Metrics),
	)
	app.Resolver = endpoints.NewResolver(cfg.API.BaseURL)

	deps := client.Deps{
		Gateway:  app.Gateway,
		Session:  app.Session,
		Resolver: app.Resolver,
		Logger:   appLogger,
	}
	app.Auth = client.NewAuthClient(deps)
	app.Profile = client.NewProfileClient(deps)
	app.APITokens = client.NewAPITokensClient(deps)
	app.Services = client.NewServicesClient(deps)
	app.Origins = client.NewOriginsClient(deps)
	app.Webhooks = client.NewWebhooksClient(deps)
	app.Tickets = client.NewTicketsClient(deps)
	app.Users = client.NewUsersClient(deps)

	return app, nil
}

// openStorage подключает бэкенд хранения сессии и регистрирует его проверку
func (a *App) openStorage(ctx context.Context) error {
	cfg := a.Config
	switch cfg.Session.Backend {
	case config.BackendMemory:
		a.Storage = store.NewMemoryStorage()

	case config.BackendRedis:
		redisConfig := pkgredis.NewConfig()
		redisConfig.Addr = cfg.Redis.Addr
		redisConfig.Password = cfg.Redis.Password
		redisConfig.DB = cfg.Redis.DB

		redisClient, err := pkgredis.Connect(ctx, redisConfig)
		if err != nil {
			return errors.Wrap(err, errors.ErrTransport, "не удалось подключиться к Redis")
		}
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		a.Health.Register("redis", redisClient.HealthCheck)
		a.Storage = store.NewRedisStorage(redisClient.Client, cfg.Session.Namespace)

	case config.BackendPostgres:
		dbConfig := database.NewConfig()
		dbConfig.URL = cfg.Database.URL

		pg, err := database.Connect(ctx, dbConfig)
		if err != nil {
			return errors.Wrap(err, errors.ErrTransport, "не удалось подключиться к PostgreSQL")
		}
		a.closers = append(a.closers, pg.Close)
		a.Health.Register("postgres", pg.HealthCheck)

		pgStorage := store.NewPostgresStorage(pg.Pool, cfg.Session.Namespace)
		if err := pgStorage.EnsureSchema(ctx); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "не удалось подготовить таблицу сессий")
		}
		a.Storage = pgStorage

	default:
		fileStorage, err := store.NewFileStorage(cfg.Session.Dir)
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, fmt.Sprintf("не удалось открыть %s", cfg.Session.Dir))
		}
		a.Storage = fileStorage
	}

	a.Logger.Debug("Хранилище сессии готово", logger.String("backend", cfg.Session.Backend))
	return nil
}

// done сообщает об успешном действии: уведомлением в таблице,
// данными или сообщением в json и yaml
func (a *App) done(message string, data interface{}) error {
	if a.Printer.Format() == output.FormatTable {
		a.Notifier.Success(message)
		return nil
	}
	if data != nil {
		return a.Printer.Print(nil, data)
	}
	return a.Printer.PrintMessage(message)
}

// Close освобождает ресурсы в обратном порядке
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
