package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/cmd/sheetsync/cmd/changes"
	"github.com/agentstation/sheetsync/cmd/sheetsync/cmd/export"
	"github.com/agentstation/sheetsync/cmd/sheetsync/cmd/extract"
	"github.com/agentstation/sheetsync/cmd/sheetsync/cmd/ids"
	"github.com/agentstation/sheetsync/cmd/sheetsync/cmd/importer"
	"github.com/agentstation/sheetsync/cmd/sheetsync/cmd/merge"
	"github.com/agentstation/sheetsync/cmd/sheetsync/cmd/publish"
	"github.com/agentstation/sheetsync/cmd/sheetsync/cmd/watch"
	"github.com/agentstation/sheetsync/internal/cmd/output"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands, in pipeline order
	rootCmd.AddCommand(importer.NewCommand(a))
	rootCmd.AddCommand(merge.NewCommand(a))
	rootCmd.AddCommand(ids.NewCommand(a))
	rootCmd.AddCommand(extract.NewCommand(a))
	rootCmd.AddCommand(changes.NewCommand(a))
	rootCmd.AddCommand(export.NewCommand(a))
	rootCmd.AddCommand(watch.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(publish.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand prints the version. -o json or yaml prints the full
// build information, as do -v and -o wide.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := a.Build()
			w := cmd.OutOrStdout()
			format := output.Format(a.config.Format)
			if format == output.FormatJSON || format == output.FormatYAML {
				return output.NewFormatter(format).Format(w, info)
			}
			cmd.Printf("sheetsync %s\n", info.Version)
			if a.config.Verbose || format == output.FormatWide {
				return output.NewFormatter(output.FormatWide).Format(w, info)
			}
			return nil
		},
	}
}
