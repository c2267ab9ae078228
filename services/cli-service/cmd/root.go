package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	pkgerrors "AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/pkg/logger"
	"AssistantHubPlatform/services/cli-service/internal/output"
)

// Version версия консоли, подставляется при сборке через -ldflags
var Version = "dev"

// silentError ошибка, уже выведенная пользователю
type silentError struct {
	err error
}

func (e *silentError) Error() string { return e.err.Error() }

func (e *silentError) Unwrap() error { return e.err }

// rootOptions общее состояние дерева команд
type rootOptions struct {
	v      *viper.Viper
	stdout io.Writer
	stderr io.Writer

	// newApp подменяется в тестах
	newApp func(ctx context.Context, opts *rootOptions) (*App, error)
}

// Execute выполняет корневую команду
func Execute(ctx context.Context) error {
	root := NewRootCmd(os.Stdout, os.Stderr)
	return root.ExecuteContext(ctx)
}

// NewRootCmd собирает дерево команд
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
		newApp: NewApp,
	}

	rootCmd := &cobra.Command{
		Use:   "assistanthub",
		Short: "AssistantHub CLI - управление AI ассистентами",
		Long: `AssistantHub CLI - консоль платформы AI ассистентов.

Управляет сервисами ассистентов, вебхуками эскалации, запросами
cross-origin доступа, токенами внешних систем и пользователями.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringP("config", "c", "", "файл конфигурации (по умолчанию ~/.assistanthub/config.yaml)")
	flags.String("api-url", "", "адрес бэкенда")
	flags.StringP("output", "o", "", "формат вывода (table, json, yaml)")
	flags.Bool("debug", false, "подробные логи в stderr")
	flags.Bool("no-color", false, "вывод без цветов")

	// Bind flags to viper
	_ = opts.v.BindPFlag("config", flags.Lookup("config"))
	_ = opts.v.BindPFlag("api.base_url", flags.Lookup("api-url"))
	_ = opts.v.BindPFlag("output.format", flags.Lookup("output"))
	_ = opts.v.BindPFlag("debug", flags.Lookup("debug"))
	_ = opts.v.BindPFlag("no_color", flags.Lookup("no-color"))
	_ = opts.v.BindEnv("config", "ASSISTANTHUB_CONFIG")

	rootCmd.AddCommand(
		newAuthCmd(opts),
		newProfileCmd(opts),
		newTokensCmd(opts),
		newServicesCmd(opts),
		newOriginsCmd(opts),
		newWebhooksCmd(opts),
		newTicketsCmd(opts),
		newUsersCmd(opts),
		newConfigCmd(opts),
		newServeCmd(opts),
		newVersionCmd(opts),
		newCompletionCmd(),
	)

	return rootCmd
}

// run строит App, выполняет действие и выводит ошибку в выбранном формате
func (o *rootOptions) run(cmd *cobra.Command, action func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := o.newApp(ctx, o)
	if err != nil {
		return o.handleError(cmd, nil, err)
	}
	defer app.Close()

	started := time.Now()
	err = action(ctx, app)
	app.Commands.CommandExecuted(cmd.CommandPath(), string(pkgerrors.CodeOf(err)), time.Since(started))
	if err != nil {
		return o.handleError(cmd, app, err)
	}
	return nil
}

// handleError выводит ошибку и помечает ее как выведенную
func (o *rootOptions) handleError(cmd *cobra.Command, app *App, err error) error {
	if err == nil {
		return nil
	}

	// Convert to our error type if possible
	var appErr *pkgerrors.Error
	if !errors.As(err, &appErr) {
		appErr = pkgerrors.Wrap(err, pkgerrors.ErrInternal, err.Error())
	}

	printer := output.NewPrinter(o.stdout, o.format(), false)
	if app != nil {
		app.Logger.Debug("Command failed",
			logger.String("command", cmd.CommandPath()),
			logger.String("code", string(appErr.Code)),
			logger.Error(err))
		printer = app.Printer
	}
	printer.PrintError(o.stderr, appErr)

	return &silentError{err: appErr}
}

// format формат вывода из флага, до загрузки конфигурации
func (o *rootOptions) format() output.FormatType {
	format, err := output.ParseFormat(o.v.GetString("output.format"))
	if err != nil {
		return output.FormatTable
	}
	return format
}

// exitCode переводит ошибку команды в код завершения
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case pkgerrors.HasCode(err, pkgerrors.ErrValidation):
		return 2
	default:
		return 1
	}
}

// Main точка входа бинарника, возвращает код завершения
func Main(ctx context.Context) int {
	err := Execute(ctx)
	if err == nil {
		return 0
	}
	var silent *silentError
	if !errors.As(err, &silent) {
		// Ошибки разбора флагов и аргументов cobra
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		return 2
	}
	return exitCode(silent.err)
}
