package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/output"
)

// authStatus состояние сессии для вывода
type authStatus struct {
	Authenticated bool       `json:"authenticated"`
	Username      string     `json:"username,omitempty"`
	Role          string     `json:"role,omitempty"`
	Backend       string     `json:"backend"`
	Subject       string     `json:"subject,omitempty"`
	ExpiresAt     *time.Time `json:"expires_at,omitempty"`
	Expired       bool       `json:"expired,omitempty"`
}

func newAuthCmd(opts *rootOptions) *cobra.Command {
	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Управление аутентификацией",
		Long: `Команды для управления аутентификацией пользователей:
вход, выход и проверка статуса сессии.`,
	}

	loginCmd := &cobra.Command{
		Use:   "login [username]",
		Short: "Войти в систему",
		Long: `Выполняет вход по логину и паролю.
Сохраняет токен и пользователя для последующих команд.
Пароль берется из --password, ASSISTANTHUB_PASSWORD или stdin.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				return handleLogin(ctx, cmd, args, app)
			})
		},
	}
	loginCmd.Flags().StringP("username", "u", "", "логин")
	loginCmd.Flags().StringP("password", "p", "", "пароль")

	logoutCmd := &cobra.Command{
		Use:   "logout",
		Short: "Выйти из системы",
		Long:  `Завершает сессию на бэкенде и удаляет сохраненный токен.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if err := app.Auth.Logout(ctx); err != nil {
					return err
				}
				return app.done("Вы вышли из системы", nil)
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Проверить статус аутентификации",
		Long:  `Показывает сохраненную сессию без обращения к бэкенду.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				return handleAuthStatus(app)
			})
		},
	}

	whoamiCmd := &cobra.Command{
		Use:   "whoami",
		Short: "Текущий пользователь",
		Long:  `Запрашивает запись пользователя у бэкенда и обновляет сохраненную сессию.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				user, err := app.Auth.Me(ctx)
				if err != nil {
					return err
				}
				return app.Printer.Print(output.ProfileTable(*user), user)
			})
		},
	}

	authCmd.AddCommand(loginCmd, logoutCmd, statusCmd, whoamiCmd)
	return authCmd
}

func handleLogin(ctx context.Context, cmd *cobra.Command, args []string, app *App) error {
	username, _ := cmd.Flags().GetString("username")
	if len(args) > 0 {
		username = args[0]
	}
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = os.Getenv("ASSISTANTHUB_PASSWORD")
	}

	in := bufio.NewReader(cmd.InOrStdin())
	var err error
	if strings.TrimSpace(username) == "" {
		if username, err = prompt(in, cmd.ErrOrStderr(), "Логин: "); err != nil {
			return err
		}
	}
	if password == "" {
		if password, err = prompt(in, cmd.ErrOrStderr(), "Пароль: "); err != nil {
			return err
		}
	}

	user, err := app.Auth.Login(ctx, username, password)
	if err != nil {
		return err
	}
	return app.done(fmt.Sprintf("Вход выполнен: %s (%s)", user.Username, user.Role), user)
}

// prompt читает одну строку ввода
func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.Wrap(err, errors.ErrValidation, "не удалось прочитать ввод")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func handleAuthStatus(app *App) error {
	state := app.Session.Snapshot()
	status := authStatus{
		Authenticated: state.IsAuthenticated,
		Backend:       app.Config.Session.Backend,
	}
	if state.User != nil {
		status.Username = state.User.Username
		status.Role = string(state.User.Role)
	}

	// Токен может быть непрозрачным, тогда сроков нет
	if claims, err := app.Session.TokenClaims(); err == nil {
		status.Subject = claims.Subject
		status.ExpiresAt = claims.ExpiresAt
		status.Expired = claims.Expired(time.Now())
	} else if !errors.HasCode(err, errors.ErrUnauthenticated) {
		app.Logger.Debug("Токен не является JWT")
	}

	table := output.NewTableData("Параметр", "Значение")
	if status.Authenticated {
		table.AddRowWithStyle(output.StyleSuccess, "Статус", "✓ выполнен вход")
		table.AddRow("Пользователь", status.Username)
		table.AddRow("Роль", status.Role)
	} else {
		table.AddRowWithStyle(output.StyleWarning, "Статус", "⚠ вход не выполнен")
	}
	table.AddRow("Хранилище", status.Backend)
	if status.ExpiresAt != nil {
		style := output.StyleDefault
		if status.Expired {
			style = output.StyleError
		}
		table.AddRowWithStyle(style, "Токен до", output.FormatTime(status.ExpiresAt))
	}

	return app.Printer.Print(table, status)
}
