package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/output"
)

func newTokensCmd(opts *rootOptions) *cobra.Command {
	tokensCmd := &cobra.Command{
		Use:   "tokens",
		Short: "Токены трекера задач и AI провайдера",
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Показать сохраненные токены",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				tokens, err := app.APITokens.Get(ctx)
				if err != nil {
					return err
				}
				return app.Printer.Print(output.APITokensTable(*tokens), tokens)
			})
		},
	}

	setCmd := &cobra.Command{
		Use:   "set",
		Short: "Сохранить токены",
		Long:  `Сохраняет переданные поля, остальные остаются без изменений.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				var tokens domain.APITokens
				tokens.IssueTrackerURL, _ = cmd.Flags().GetString("tracker-url")
				tokens.IssueTrackerEmail, _ = cmd.Flags().GetString("tracker-email")
				tokens.IssueTrackerToken, _ = cmd.Flags().GetString("tracker-token")
				tokens.AIProviderToken, _ = cmd.Flags().GetString("ai-token")
				if err := app.APITokens.Save(ctx, tokens); err != nil {
					return err
				}
				return app.done("Токены сохранены", nil)
			})
		},
	}
	setCmd.Flags().String("tracker-url", "", "адрес трекера задач")
	setCmd.Flags().String("tracker-email", "", "email учетной записи трекера")
	setCmd.Flags().String("tracker-token", "", "API токен трекера")
	setCmd.Flags().String("ai-token", "", "токен AI провайдера")

	testCmd := &cobra.Command{
		Use:       "test <issue_tracker|ai_provider>",
		Short:     "Проверить сохраненный токен",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{domain.TokenKindIssueTracker, domain.TokenKindAIProvider},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				result, err := app.APITokens.Test(ctx, args[0])
				if err != nil {
					return err
				}
				table := output.NewTableData("Токен", "Результат", "Сообщение")
				if result.Valid {
					table.AddRowWithStyle(output.StyleSuccess, args[0], "✓ работает", output.OrDash(result.Message))
				} else {
					table.AddRowWithStyle(output.StyleError, args[0], "✗ не работает", output.OrDash(result.Message))
				}
				return app.Printer.Print(table, result)
			})
		},
	}

	tokensCmd.AddCommand(showCmd, setCmd, testCmd)
	return tokensCmd
}
