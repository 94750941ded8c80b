package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/PizzaHomicide/mirrorplay/internal/config"
)

var (
	envNameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	envSetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#43BF6D"))
	envUnsetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
	envDescStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
)

// newEnvCommand lists the supported environment variables with their current values
func newEnvCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "env",
		Short: "Display the supported environment variables",
		Long:  "Display the environment variables that override the config file, and their current process values.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
			unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))
			verbose := lo.Must(cmd.Flags().GetBool("describe"))

			for _, env := range config.SupportedEnvVars() {
				value := os.Getenv(env.Name)
				present := value != ""

				if (setOnly && !present) || (unsetOnly && present) {
					continue
				}

				cmd.Print(envNameStyle.Render(env.Name))
				cmd.Print("=")
				if present {
					cmd.Println(envSetStyle.Render(value))
				} else {
					cmd.Println(envUnsetStyle.Render("unset"))
				}
				if verbose {
					cmd.Println("  " + envDescStyle.Render(env.Desc))
				}
			}
		},
	}

	cmd.Flags().BoolP("set-only", "s", false, "Display only environment variables that are currently defined")
	cmd.Flags().BoolP("unset-only", "u", false, "Display only environment variables that are currently undefined")
	cmd.Flags().BoolP("describe", "D", false, "Describe what each variable does")
	cmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
	return cmd
}
