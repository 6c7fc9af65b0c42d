// Package ids provides the ids command.
package ids

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/internal/cmd/output"
	"github.com/agentstation/sheetsync/internal/cmd/table"
)

// NewCommand creates the ids command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "ids",
		GroupID: "core",
		Short:   "Extract changed identifiers from the diff file",
		Long: `Ids reads the unified diff of the data directory and writes the manifest
of changed identifiers, one "Section -> id1, id2" line per section. Only the
first identifier of each hunk is captured.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			m, err := client.ExtractIDs(cmd.Context())
			if err != nil {
				return err
			}

			status := output.Skipped("No changes detected")
			if !m.IsEmpty() {
				status = output.Status(true, 0, fmt.Sprintf("%d changed identifiers in %d sections", m.Count(), len(m.Sections)))
			}
			data := table.ManifestToTableData(m)
			return output.Render(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), output.NewChangesReport(m, nil), &data, status)
		},
	}
}
