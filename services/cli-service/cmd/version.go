package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"AssistantHubPlatform/services/cli-service/internal/output"
)

func newVersionCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Версия консоли",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := map[string]string{
				"version": Version,
				"go":      runtime.Version(),
				"os/arch": runtime.GOOS + "/" + runtime.GOARCH,
			}
			printer := output.NewPrinter(opts.stdout, opts.format(), false)
			if err := printer.Print(output.KeyValueTable(info), info); err != nil {
				return opts.handleError(cmd, nil, err)
			}
			return nil
		},
	}
}
