// Package importer provides the import command.
package importer

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/internal/cmd/output"
	"github.com/agentstation/sheetsync/internal/cmd/table"
)

// NewCommand creates the import command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "import",
		GroupID: "core",
		Short:   "Convert the dropped workbook into JSON sections",
		Long: `Import converts the single .xlsx workbook in the workbook directory into
one <Section>.json file per sheet in the export directory. The export
directory is cleared first. Sheets listed in excluded_sheets are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			res, err := client.Import(cmd.Context())
			if err != nil {
				return err
			}

			data := table.CountsToTableData(res.Sections)
			status := output.Status(true, 0, fmt.Sprintf("Imported %d sections from %s", len(res.Sections), res.Workbook))
			return output.Render(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), res, &data, status)
		},
	}
}
