package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/client"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/output"
)

func newServicesCmd(opts *rootOptions) *cobra.Command {
	servicesCmd := &cobra.Command{
		Use:     "services",
		Aliases: []string{"service", "svc"},
		Short:   "Сервисы AI ассистентов",
		Long: `Сервис связывает AI ассистента с проектом трекера и публичным чат эндпоинтом.
Администратор видит сервисы всех пользователей.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Список сервисов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				services, err := app.Services.List(ctx)
				if err != nil {
					return err
				}
				return app.Printer.Print(output.ServicesTable(services), services)
			})
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Показать сервис",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				service, err := app.Services.Get(ctx, args[0])
				if err != nil {
					return err
				}
				return app.Printer.Print(output.ServiceDetails(*service), service)
			})
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Создать сервис",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				input, err := serviceInputFromFlags(cmd)
				if err != nil {
					return err
				}
				catalog := client.NewCatalog(app.Services)
				service, err := catalog.Create(ctx, input)
				if err != nil {
					return err
				}
				return app.done(fmt.Sprintf("Сервис создан: %s (%s), всего сервисов: %d",
					service.ServiceName, service.ServiceID, len(catalog.Items())), service)
			})
		},
	}
	addServiceFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Изменить сервис",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				input, err := serviceInputFromFlags(cmd)
				if err != nil {
					return err
				}
				service, err := app.Services.Update(ctx, args[0], input)
				if err != nil {
					return err
				}
				return app.done("Сервис обновлен", service)
			})
		},
	}
	addServiceFlags(updateCmd)

	toggleCmd := &cobra.Command{
		Use:   "toggle <id>",
		Short: "Включить или выключить сервис",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				catalog := client.NewCatalog(app.Services)
				if err := catalog.Load(ctx); err != nil {
					return err
				}
				service, err := catalog.Toggle(ctx, args[0])
				if err != nil {
					return err
				}
				state := "выключен"
				if service.Active {
					state = "включен"
				}
				return app.done(fmt.Sprintf("Сервис %s %s", service.ServiceName, state), service)
			})
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить сервис",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if err := app.Services.Delete(ctx, args[0]); err != nil {
					return err
				}
				return app.done("Сервис удален: "+args[0], nil)
			})
		},
	}

	servicesCmd.AddCommand(listCmd, showCmd, createCmd, updateCmd, toggleCmd, deleteCmd)
	return servicesCmd
}

func addServiceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("name", "n", "", "название сервиса")
	cmd.Flags().StringP("assistant", "a", "", "ID ассистента")
	cmd.Flags().StringP("project", "p", "", "ключ проекта трекера")
	cmd.Flags().String("config", "", "JSON конфигурация или @файл")
	cmd.Flags().Bool("active", true, "сервис активен")
}

// serviceInputFromFlags собирает тело запроса только из заданных флагов
func serviceInputFromFlags(cmd *cobra.Command) (domain.ServiceInput, error) {
	var input domain.ServiceInput
	input.ServiceName, _ = cmd.Flags().GetString("name")
	input.AssistantID, _ = cmd.Flags().GetString("assistant")
	input.ProjectKey, _ = cmd.Flags().GetString("project")
	if cmd.Flags().Changed("active") {
		active, _ := cmd.Flags().GetBool("active")
		input.Active = &active
	}

	raw, _ := cmd.Flags().GetString("config")
	if strings.HasPrefix(raw, "@") {
		data, err := os.ReadFile(strings.TrimPrefix(raw, "@"))
		if err != nil {
			return input, errors.Wrap(err, errors.ErrValidation, "не удалось прочитать файл конфигурации сервиса")
		}
		raw = string(data)
	}
	if strings.TrimSpace(raw) != "" {
		input.Config = json.RawMessage(raw)
	}
	return input, nil
}
