package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/client"
	cliConfig "AssistantHubPlatform/services/cli-service/internal/config"
	"AssistantHubPlatform/services/cli-service/internal/output"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Управление конфигурацией",
		Long: `Команды для управления локальной конфигурацией консоли:
создание, просмотр и изменение отдельных параметров.
Не требуют сессии и работают даже с невалидным файлом.`,
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Инициализировать конфигурацию",
		Long:  "Создать файл конфигурации с настройками по умолчанию",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			path, err := opts.configPath()
			if err != nil {
				return opts.handleError(cmd, nil, err)
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return opts.handleError(cmd, nil, errors.New(errors.ErrConflict,
						"файл конфигурации уже существует. Используйте --force для перезаписи"))
				}
			}

			if _, err := cliConfig.InitConfig(path); err != nil {
				return opts.handleError(cmd, nil, errors.Wrap(err, errors.ErrInternal, err.Error()))
			}
			return opts.message(cmd, "Конфигурация создана: "+path)
		},
	}
	initCmd.Flags().BoolP("force", "f", false, "перезаписать существующий файл")

	viewCmd := &cobra.Command{
		Use:     "view",
		Aliases: []string{"show"},
		Short:   "Просмотреть конфигурацию",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.rawConfig()
			if err != nil {
				return opts.handleError(cmd, nil, err)
			}
			showSecrets, _ := cmd.Flags().GetBool("show-secrets")
			printer := output.NewPrinter(opts.stdout, opts.format(), cfg.Output.Colors && output.DetectColors())
			return printer.Print(output.KeyValueTable(configValues(cfg, showSecrets)), cfg)
		},
	}
	viewCmd.Flags().BoolP("show-secrets", "x", false, "показать пароли")

	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Изменить параметр",
		Long: `Изменяет параметр по ключу вида section.field, например:
  assistanthub config set api.base_url https://hub.example.com
  assistanthub config set session.backend redis`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.rawConfig()
			if err != nil {
				return opts.handleError(cmd, nil, err)
			}
			if err := cfg.Set(args[0], args[1]); err != nil {
				return opts.handleError(cmd, nil, errors.Wrap(err, errors.ErrValidation, err.Error()))
			}
			if err := cfg.Validate(); err != nil {
				return opts.handleError(cmd, nil, errors.Wrap(err, errors.ErrValidation, err.Error()))
			}
			if err := cfg.Save(); err != nil {
				return opts.handleError(cmd, nil, errors.Wrap(err, errors.ErrInternal, err.Error()))
			}
			return opts.message(cmd, fmt.Sprintf("%s = %s", args[0], args[1]))
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Путь к файлу конфигурации",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := opts.configPath()
			if err != nil {
				return opts.handleError(cmd, nil, err)
			}
			_, err = fmt.Fprintln(opts.stdout, path)
			return err
		},
	}

	configCmd.AddCommand(initCmd, viewCmd, setCmd, pathCmd, newExportCmd(opts))
	return configCmd
}

// configPath путь из флага, переменной окружения или по умолчанию
func (o *rootOptions) configPath() (string, error) {
	if path := o.v.GetString("config"); path != "" {
		return path, nil
	}
	path, err := cliConfig.GetConfigPath()
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, err.Error())
	}
	return path, nil
}

// rawConfig читает конфигурацию без проверки
func (o *rootOptions) rawConfig() (*cliConfig.Config, error) {
	path, err := o.configPath()
	if err != nil {
		return nil, err
	}
	cfg, err := cliConfig.LoadConfig(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrValidation, err.Error())
	}
	return cfg, nil
}

// message выводит сообщение без сборки App
func (o *rootOptions) message(cmd *cobra.Command, msg string) error {
	printer := output.NewPrinter(o.stdout, o.format(), false)
	if err := printer.PrintMessage(msg); err != nil {
		return o.handleError(cmd, nil, err)
	}
	return nil
}

func configValues(cfg *cliConfig.Config, showSecrets bool) map[string]string {
	secret := func(s string) string {
		if showSecrets {
			return s
		}
		return client.MaskSecret(s)
	}

	return map[string]string{
		"environment":        cfg.Environment,
		"api.base_url":       cfg.API.BaseURL,
		"api.timeout":        strconv.Itoa(cfg.API.Timeout),
		"session.backend":    cfg.Session.Backend,
		"session.dir":        cfg.Session.Dir,
		"session.namespace":  cfg.Session.Namespace,
		"redis.addr":         cfg.Redis.Addr,
		"redis.password":     secret(cfg.Redis.Password),
		"redis.db":           strconv.Itoa(cfg.Redis.DB),
		"database.url":       secret(cfg.Database.URL),
		"logger.level":       cfg.Logger.Level,
		"output.format":      cfg.Output.Format,
		"output.colors":      strconv.FormatBool(cfg.Output.Colors),
		"notify.ttl":         strconv.Itoa(cfg.Notify.TTL),
		"status_server.addr": cfg.StatusServer.Addr,
		"path":               cfg.Path,
	}
}
