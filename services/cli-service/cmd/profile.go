package cmd

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"AssistantHubPlatform/pkg/errors"
	"AssistantHubPlatform/services/cli-service/internal/client"
	"AssistantHubPlatform/services/cli-service/internal/output"
)

func newProfileCmd(opts *rootOptions) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Профиль пользователя",
		Long:  `Просмотр и изменение профиля, завершение первичной настройки, логотип и пароль.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				user := app.Session.User()
				if user == nil {
					return errors.New(errors.ErrUnauthenticated, "вход не выполнен")
				}
				return app.Printer.Print(output.ProfileTable(*user), user)
			})
		},
	}

	updateCmd := &cobra.Command{
		Use:   "update",
		Short: "Изменить логин или email",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				var update client.ProfileUpdate
				if cmd.Flags().Changed("username") {
					username, _ := cmd.Flags().GetString("username")
					update.Username = &username
				}
				if cmd.Flags().Changed("email") {
					email, _ := cmd.Flags().GetString("email")
					update.Email = &email
				}
				user, err := app.Profile.UpdateProfile(ctx, update)
				if err != nil {
					return err
				}
				return app.done("Профиль обновлен", user)
			})
		},
	}
	updateCmd.Flags().StringP("username", "u", "", "новый логин")
	updateCmd.Flags().StringP("email", "e", "", "новый email")

	setupCmd := &cobra.Command{
		Use:   "setup-complete",
		Short: "Отметить первичную настройку завершенной",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				if err := app.Profile.CompleteSetup(ctx); err != nil {
					return err
				}
				return app.done("Первичная настройка завершена", nil)
			})
		},
	}

	logoCmd := &cobra.Command{
		Use:   "logo <file>",
		Short: "Загрузить логотип организации",
		Long:  `Загружает изображение (PNG, JPEG, GIF, WebP) размером до 2 МБ.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				dataURI, err := client.LogoDataURI(args[0])
				if err != nil {
					return err
				}
				if err := app.Profile.UploadOrganizationLogo(ctx, dataURI); err != nil {
					return err
				}
				return app.done("Логотип загружен", nil)
			})
		},
	}

	passwordCmd := &cobra.Command{
		Use:   "password",
		Short: "Сменить пароль",
		Long:  `Пароли берутся из флагов или из ASSISTANTHUB_PASSWORD и ASSISTANTHUB_NEW_PASSWORD.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(ctx context.Context, app *App) error {
				current, _ := cmd.Flags().GetString("current")
				if current == "" {
					current = os.Getenv("ASSISTANTHUB_PASSWORD")
				}
				next, _ := cmd.Flags().GetString("new")
				if next == "" {
					next = os.Getenv("ASSISTANTHUB_NEW_PASSWORD")
				}
				if err := app.Profile.ChangePassword(ctx, current, next); err != nil {
					return err
				}
				return app.done("Пароль изменен", nil)
			})
		},
	}
	passwordCmd.Flags().String("current", "", "текущий пароль")
	passwordCmd.Flags().String("new", "", "новый пароль")

	profileCmd.AddCommand(updateCmd, setupCmd, logoCmd, passwordCmd)
	return profileCmd
}
