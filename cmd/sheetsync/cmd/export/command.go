// Package export provides the export command.
package export

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/internal/cmd/output"
	"github.com/agentstation/sheetsync/internal/cmd/table"
)

// NewCommand creates the export command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var input string

	cmd := &cobra.Command{
		Use:     "export",
		GroupID: "core",
		Short:   "Write JSON sections to a timestamped workbook",
		Long: `Export writes every <Section>.json file of a directory to one sheet of a
new Export_<timestamp>.xlsx workbook in the workbook output directory.
The data directory is used unless --input names another one, typically
the changes directory.`,
		Example: `  sheetsync export
  sheetsync export --input changes/final-output`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			res, err := client.Export(cmd.Context(), input)
			if err != nil {
				return err
			}

			data := table.CountsToTableData(res.Sections)
			status := output.Status(true, 0, "Wrote "+res.Path)
			return output.Render(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), res, &data, status)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "section directory to export (default is the data directory)")

	return cmd
}
