package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"AssistantHubPlatform/services/cli-service/internal/output"
)

func newOriginsCmd(opts *rootOptions) *cobra.Command {
	originsCmd := &cobra.Command{
		Use:   "origins",
		Short: "Запросы cross-origin доступа",
		Long:  `Сайты запрашивают доступ к публичному чат эндпоинту сервиса, запросы одобряются или отклоняются.`,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Список запросов",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				status, _ := cmd.Flags().GetString("status")
				requests, err := app.Origins.List(ctx, status)
				if err != nil {
					return err
				}
				return app.Printer.Print(output.OriginsTable(requests), requests)
			})
		},
	}
	listCmd.Flags().StringP("status", "s", "", "фильтр по статусу (pending, approved, rejected)")

	requestCmd := &cobra.Command{
		Use:   "request <service-id> <origin>",
		Short: "Запросить доступ для origin",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				request, err := app.Origins.Request(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return app.done("Запрос отправлен: "+request.Origin, request)
			})
		},
	}

	approveCmd := &cobra.Command{
		Use:   "approve <id>",
		Short: "Одобрить запрос",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if err := app.Origins.Approve(ctx, args[0]); err != nil {
					return err
				}
				return app.done("Запрос одобрен: "+args[0], nil)
			})
		},
	}

	rejectCmd := &cobra.Command{
		Use:   "reject <id>",
		Short: "Отклонить запрос",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				reason, _ := cmd.Flags().GetString("reason")
				if err := app.Origins.Reject(ctx, args[0], reason); err != nil {
					return err
				}
				return app.done("Запрос отклонен: "+args[0], nil)
			})
		},
	}
	rejectCmd.Flags().StringP("reason", "r", "", "причина отказа")

	originsCmd.AddCommand(listCmd, requestCmd, approveCmd, rejectCmd)
	return originsCmd
}
