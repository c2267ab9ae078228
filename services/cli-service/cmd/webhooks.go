package cmd

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"AssistantHubPlatform/services/cli-service/internal/client"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/output"
)

func newWebhooksCmd(opts *rootOptions) *cobra.Command {
	webhooksCmd := &cobra.Command{
		Use:     "webhooks",
		Aliases: []string{"webhook", "wh"},
		Short:   "Вебхуки эскалации",
		Long: `Вебхук пересылает события AI (эскалация, создание задачи, ошибка сервиса)
во внешнюю систему автоматизации.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Список вебхуков",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				webhooks, err := app.Webhooks.List(ctx)
				if err != nil {
					return err
				}
				return app.Printer.Print(output.WebhooksTable(webhooks), webhooks)
			})
		},
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Создать вебхук",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				webhook, err := app.Webhooks.Create(ctx, webhookInputFromFlags(cmd))
				if err != nil {
					return err
				}
				return app.done("Вебхук создан: "+webhook.ID, webhook)
			})
		},
	}
	addWebhookFlags(createCmd)

	updateCmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Изменить вебхук",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				webhook, err := app.Webhooks.Update(ctx, args[0], webhookInputFromFlags(cmd))
				if err != nil {
					return err
				}
				return app.done("Вебхук обновлен", webhook)
			})
		},
	}
	addWebhookFlags(updateCmd)

	deleteCmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Удалить вебхук",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if err := app.Webhooks.Delete(ctx, args[0]); err != nil {
					return err
				}
				return app.done("Вебхук удален: "+args[0], nil)
			})
		},
	}

	testCmd := &cobra.Command{
		Use:   "test <id>",
		Short: "Отправить тестовое событие",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				result, err := app.Webhooks.Test(ctx, args[0])
				if err != nil {
					return err
				}
				return app.Printer.Print(output.WebhookTestTable(*result), result)
			})
		},
	}

	webhooksCmd.AddCommand(listCmd, createCmd, updateCmd, deleteCmd, testCmd)
	return webhooksCmd
}

func addWebhookFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("name", "n", "", "название")
	cmd.Flags().StringP("url", "u", "", "адрес получателя (http или https)")
	cmd.Flags().StringP("service", "s", "", "ID сервиса")
	cmd.Flags().StringSliceP("events", "e", nil, "события: "+strings.Join(client.WebhookEvents, ", "))
	cmd.Flags().String("secret", "", "секрет подписи")
	cmd.Flags().Bool("active", true, "вебхук активен")
}

// webhookInputFromFlags собирает тело запроса только из заданных флагов
func webhookInputFromFlags(cmd *cobra.Command) domain.WebhookInput {
	var input domain.WebhookInput
	input.Name, _ = cmd.Flags().GetString("name")
	input.URL, _ = cmd.Flags().GetString("url")
	input.ServiceID, _ = cmd.Flags().GetString("service")
	input.Secret, _ = cmd.Flags().GetString("secret")
	if cmd.Flags().Changed("events") {
		input.Events, _ = cmd.Flags().GetStringSlice("events")
	}
	if cmd.Flags().Changed("active") {
		active, _ := cmd.Flags().GetBool("active")
		input.Active = &active
	}
	return input
}
