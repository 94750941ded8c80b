package cli

import (
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/PizzaHomicide/mirrorplay/internal/version"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Display version and build metadata",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if lo.Must(cmd.Flags().GetBool("short")) {
				cmd.Println(version.GetVersion())
				return
			}
			cmd.Println(version.GetVersionInfo())
		},
	}
	cmd.Flags().BoolP("short", "s", false, "Display only the version string")
	return cmd
}
