package app

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/internal/cmd/output"
	"github.com/agentstation/sheetsync/pkg/logging"
)

// Execute builds a fresh command tree and runs args against it.
func (a *App) Execute(ctx context.Context, args []string) error {
	rootCmd := a.createRootCommand()
	rootCmd.SetArgs(args)
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "sheetsync",
		Short:   "Keep a JSON snapshot of store data in step with spreadsheet exports",
		Version: a.build.Version,
		Long: `sheetsync keeps a version-controlled JSON snapshot of a store's content,
one <Section>.json file per section, in step with spreadsheet exports.

Incoming direction:  import a workbook, merge it into the snapshot, publish.
Outgoing direction:  extract the records a diff touched, export them to a
workbook ready for re-import.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	// Flags default to the loaded config so help shows effective values.
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.flags.config, "config", "", "config file (default is ./.sheetsync.yaml or $HOME/.sheetsync.yaml)")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	pf.BoolVarP(&a.flags.quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	pf.BoolVar(&a.flags.noColor, "no-color", a.config.NoColor, "disable colored output")
	pf.StringVarP(&a.flags.format, "format", "o", a.config.Format, "output format: table, wide, json, yaml")
	pf.StringVar(&a.flags.logLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")

	if a.out != nil {
		rootCmd.SetOut(a.out)
	}
	rootCmd.SetVersionTemplate("sheetsync {{.Version}}\n")

	a.registerCommands(rootCmd)

	return rootCmd
}

// rootFlags holds the persistent flag values until the config is final.
type rootFlags struct {
	config   string
	verbose  bool
	quiet    bool
	noColor  bool
	format   string
	logLevel string
}

// setupCommand settles the config, then installs the logger every
// command reads from its context.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	changed := cmd.Flags().Changed

	// An explicit --config replaces everything loaded from the default locations.
	if changed("config") {
		config, err := LoadConfigFile(a.flags.config)
		if err != nil {
			return err
		}
		a.config = config
	}
	a.config.applyFlags(a.flags, changed)

	format, err := output.ParseFormat(a.config.Format)
	if err != nil {
		return err
	}
	a.config.Format = string(format)

	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	return nil
}

// ExitOnError prints err and exits with status 1. A nil err does nothing.
func ExitOnError(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
