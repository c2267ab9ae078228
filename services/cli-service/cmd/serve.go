package cmd

import (
	"context"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/pkg/health"
	"AssistantHubPlatform/pkg/logger"
	"AssistantHubPlatform/pkg/metrics"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/output"
)

const shutdownTimeout = 10 * time.Second

// sessionStatus ответ /session, без токена
type sessionStatus struct {
	Authenticated bool         `json:"authenticated"`
	Loading       bool         `json:"loading"`
	User          *domain.User `json:"user,omitempty"`
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Локальный сервер статуса",
		Long: `Запускает HTTP сервер с эндпоинтами /health, /ready, /live, /metrics и /session.
Сервер работает до сигнала SIGINT или SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				addr, _ := cmd.Flags().GetString("addr")
				if addr == "" {
					addr = app.Config.StatusServer.Addr
				}
				return serveStatus(ctx, app, addr)
			})
		},
	}
	serveCmd.Flags().String("addr", "", "адрес сервера (по умолчанию status_server.addr)")

	return serveCmd
}

// serveStatus обслуживает эндпоинты статуса до отмены ctx
func serveStatus(ctx context.Context, app *App, addr string) error {
	tp, err := metrics.InitializeOpenTelemetry("assistanthub-console", Version)
	if err != nil {
		app.Logger.Warn("Трассировка не инициализирована", logger.Error(err))
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			_ = tp.Shutdown(shutdownCtx)
		}()
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           statusHandler(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.Info("Сервер статуса запущен", logger.String("addr", addr))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return errors.Wrap(err, errors.ErrTransport, "не удалось запустить сервер статуса на "+addr)
		}
		return nil
	case <-ctx.Done():
	}

	app.Logger.Info("Остановка сервера статуса...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		app.Logger.Error("Ошибка остановки сервера", logger.Error(err))
		return errors.Wrap(err, errors.ErrInternal, "ошибка остановки сервера статуса")
	}

	app.Logger.Info("Сервер статуса остановлен")
	return nil
}

func statusHandler(app *App) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", app.Metrics.GetHandler())

	mux.HandleFunc("/health", health.Handler(app.Health))
	mux.HandleFunc("/ready", health.ReadyHandler(func() bool {
		return !app.Session.IsLoading()
	}))
	mux.HandleFunc("/live", health.LiveHandler())

	mux.HandleFunc("/session", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeFailure(w, errors.New(errors.ErrValidation, "метод не поддерживается").WithStatus(http.StatusMethodNotAllowed))
			return
		}
		state := app.Session.Snapshot()
		if state.IsLoading {
			writeFailure(w, errors.New(errors.ErrAuthPending, "сессия еще восстанавливается"))
			return
		}
		body, err := output.NewJSONOutput(sessionStatus{
			Authenticated: state.IsAuthenticated,
			Loading:       state.IsLoading,
			User:          state.User,
		}, nil).Render()
		if err != nil {
			writeFailure(w, errors.Wrap(err, errors.ErrInternal, "ошибка сериализации сессии"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	})

	return mux
}

// writeFailure отвечает конвертом {success:false,error} со статусом по коду ошибки
func writeFailure(w http.ResponseWriter, err *errors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.HTTPStatus())
	_, _ = w.Write(errors.MarshalFailure(err))
}
