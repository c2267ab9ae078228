package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"AssistantHubPlatform/services/cli-service/internal/client"
	"AssistantHubPlatform/services/cli-service/internal/output"
)

func newTicketsCmd(opts *rootOptions) *cobra.Command {
	ticketsCmd := &cobra.Command{
		Use:   "tickets",
		Short: "Проекты и задачи трекера",
	}

	assistantsCmd := &cobra.Command{
		Use:   "assistants",
		Short: "Ассистенты AI провайдера",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				assistants, err := app.Tickets.ListAssistants(ctx)
				if err != nil {
					return err
				}
				return app.Printer.Print(output.AssistantsTable(assistants), assistants)
			})
		},
	}

	projectsCmd := &cobra.Command{
		Use:   "projects",
		Short: "Проекты трекера",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				projects, err := app.Tickets.ListProjects(ctx)
				if err != nil {
					return err
				}
				table := output.NewTableData("Ключ", "Название")
				table.Empty = "Проектов нет"
				for _, p := range projects {
					table.AddRow(p.Key, p.Name)
				}
				return app.Printer.Print(table, projects)
			})
		},
	}

	byProjectCmd := &cobra.Command{
		Use:   "by-project",
		Short: "Сервисы и вебхуки по проектам",
		Long: `Связывает сервисы и вебхуки с проектами трекера.
Сервисы без известного проекта попадают в группу unassigned.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				groups, err := loadProjectGroups(ctx, app)
				if err != nil {
					return err
				}
				return app.Printer.Print(output.ProjectGroupsTable(groups), groups)
			})
		},
	}

	listCmd := &cobra.Command{
		Use:   "list <project>",
		Short: "Задачи проекта",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				tickets, err := app.Tickets.ListTickets(ctx, args[0])
				if err != nil {
					return err
				}
				return app.Printer.Print(output.TicketsTable(tickets), tickets)
			})
		},
	}

	ticketsCmd.AddCommand(assistantsCmd, projectsCmd, byProjectCmd, listCmd)
	return ticketsCmd
}

// loadProjectGroups загружает четыре списка и группирует их
func loadProjectGroups(ctx context.Context, app *App) ([]client.ProjectGroup, error) {
	services, err := app.Services.List(ctx)
	if err != nil {
		return nil, err
	}
	webhooks, err := app.Webhooks.List(ctx)
	if err != nil {
		return nil, err
	}
	assistants, err := app.Tickets.ListAssistants(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := app.Tickets.ListProjects(ctx)
	if err != nil {
		return nil, err
	}
	return client.GroupByProject(services, webhooks, assistants, projects), nil
}
