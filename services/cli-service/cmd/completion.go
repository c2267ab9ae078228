package cmd

import (
	"github.com/spf13/cobra"

	"AssistantHubPlatform/pkg/errors"
)

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Генерировать скрипт автодополнения",
		Long: `Генерирует скрипт автодополнения для указанной оболочки.
Чтобы включить автодополнение:

Bash:
  $ source <(assistanthub completion bash)

  # Для постоянного использования:
  $ assistanthub completion bash > ~/.local/share/bash-completion/completions/assistanthub

Zsh:
  # Если автодополнение еще не включено:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  $ assistanthub completion zsh > "${fpath[1]}/_assistanthub"

Fish:
  $ assistanthub completion fish > ~/.config/fish/completions/assistanthub.fish

PowerShell:
  PS> assistanthub completion powershell | Out-String | Invoke-Expression`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			default:
				return errors.New(errors.ErrValidation, "неподдерживаемая оболочка: "+args[0])
			}
		},
	}
}
