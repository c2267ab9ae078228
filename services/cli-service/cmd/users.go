package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/domain"
	"AssistantHubPlatform/services/cli-service/internal/output"
)

func newUsersCmd(opts *rootOptions) *cobra.Command {
	usersCmd := &cobra.Command{
		Use:   "users",
		Short: "Пользователи платформы (администратор)",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Список пользователей",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				users, err := app.Users.List(ctx)
				if err != nil {
					return err
				}
				return app.Printer.Print(output.UsersTable(users), users)
			})
		},
	}

	setRoleCmd := &cobra.Command{
		Use:       "set-role <user-id> <admin|user>",
		Short:     "Изменить роль пользователя",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(domain.RoleAdmin), string(domain.RoleUser)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil || id <= 0 {
					return errors.New(errors.ErrValidation, "некорректный ID пользователя: "+args[0])
				}
				user, err := app.Users.UpdateRole(ctx, id, domain.Role(args[1]))
				if err != nil {
					return err
				}
				return app.done(fmt.Sprintf("Роль пользователя %d: %s", user.ID, user.Role), user)
			})
		},
	}

	usersCmd.AddCommand(listCmd, setRoleCmd)
	return usersCmd
}
