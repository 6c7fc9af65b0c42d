// Package changes provides the changes command.
package changes

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/internal/cmd/output"
	"github.com/agentstation/sheetsync/internal/cmd/table"
)

// NewCommand creates the changes command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "changes",
		GroupID: "core",
		Short:   "Run ids then extract, stopping early when nothing changed",
		Long: `Changes writes the changed-identifier manifest from the diff file and
then slices the named records out of the data directory. When the diff
touched no identified record the second step is skipped and the command
still succeeds.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			res, err := client.Changes(cmd.Context())
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			report := output.NewChangesReport(res.Manifest, res.Slice)
			if res.NoChanges() {
				return output.Render(cmd.OutOrStdout(), format, report, nil, output.Skipped("No changes detected"))
			}

			data := table.ManifestToTableData(res.Manifest)
			msg := fmt.Sprintf("Extracted %d records for %d changed identifiers", res.Slice.Count(), res.Manifest.Count())
			status := output.Status(len(res.Slice.Errors) == 0, len(res.Slice.Warnings), msg)
			return output.Render(cmd.OutOrStdout(), format, report, &data, status)
		},
	}
}
