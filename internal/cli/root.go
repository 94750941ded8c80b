// Package cli implements the mirrorplay command line.
package cli

import (
	"fmt"
	"os"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/PizzaHomicide/mirrorplay/internal/config"
	"github.com/PizzaHomicide/mirrorplay/internal/log"
	"github.com/PizzaHomicide/mirrorplay/internal/ui/tui"
	"github.com/PizzaHomicide/mirrorplay/internal/version"
)

// runTUI is swapped out in tests
var runTUI = tui.Run

// NewRootCommand builds the mirrorplay command tree
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "mirrorplay [file]",
		Short: "Play dance and exercise videos with a one-key horizontal mirror",
		Long: "mirrorplay plays a local video in mpv and lets you flip it horizontally, so you can follow the moves " +
			"like a reflection.  Run it in a folder of videos to pick one, or pass a file to open it straight away.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runRoot,
	}

	root.Flags().BoolP("version", "v", false, "Print the application version")
	root.Flags().StringP("dir", "d", "", "Folder listed when choosing a video.  Overrides the config file")
	root.Flags().String("log-level", "", "Logging level.  One of: trace, debug, info, warn, error")
	lo.Must0(root.RegisterFlagCompletionFunc("log-level", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{"trace", "debug", "info", "warn", "error"}, cobra.ShellCompDirectiveNoFileComp
	}))

	root.AddCommand(newVersionCommand(), newEnvCommand())
	return root
}

// Execute runs the command line and exits non-zero on failure
func Execute() {
	root := NewRootCommand()
	root.SetOut(os.Stdout)
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "mirrorplay: %v\n", err)
		os.Exit(1)
	}
}

func runRoot(cmd *cobra.Command, args []string) error {
	if lo.Must(cmd.Flags().GetBool("version")) {
		cmd.Println(version.GetVersionInfo())
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		// It is unrecoverable if we cannot produce an application config
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyFlagOverrides(cmd, cfg)

	logger, err := log.New(log.Config{
		Level:    cfg.Logging.Level,
		FilePath: cfg.Logging.FilePath,
	})
	if err != nil {
		return fmt.Errorf("failed to initialise logger: %w", err)
	}
	defer logger.Close()

	log.SetDefaultLogger(logger)

	var initialPath string
	if len(args) == 1 {
		initialPath = args[0]
	}

	log.Info("Starting up mirrorplay", "version", version.GetVersion(), "build_time", version.GetBuildTime(), "file", initialPath)

	if err := runTUI(cfg, initialPath); err != nil {
		log.Error("Unhandled error while running TUI", "error", err)
		return err
	}

	log.Info("mirrorplay shutting down.  Goodbye!")
	return nil
}

// applyFlagOverrides layers command line flags over the loaded config
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("dir") {
		cfg.Library.Dir = lo.Must(cmd.Flags().GetString("dir"))
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = lo.Must(cmd.Flags().GetString("log-level"))
	}
}
