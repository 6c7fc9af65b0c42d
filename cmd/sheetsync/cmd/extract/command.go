// Package extract provides the extract command.
package extract

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/internal/cmd/output"
	"github.com/agentstation/sheetsync/internal/cmd/table"
	"github.com/agentstation/sheetsync/pkg/changes"
)

// NewCommand creates the extract command using app context.
func NewCommand(app application.Application) *cobra.Command {
	return &cobra.Command{
		Use:     "extract",
		GroupID: "core",
		Short:   "Slice the records named by the manifest into the changes directory",
		Long: `Extract reads the change manifest and copies every named record out of
the export directory into the changes directory, one file per section.

With -o wide the extracted records are printed per section as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			res, err := client.ExtractChanges(cmd.Context())
			if err != nil {
				return err
			}

			msg := fmt.Sprintf("Extracted %d records in %d sections", res.Count(), len(res.Sections))
			status := output.Status(len(res.Errors) == 0, len(res.Warnings), msg)
			format := output.DetectFormat(app.OutputFormat())
			w := cmd.OutOrStdout()
			if format == output.FormatWide {
				if err := printSections(w, format, res); err != nil {
					return err
				}
			}
			data := table.SliceToTableData(res)
			return output.Render(w, format, output.NewChangesReport(nil, res), &data, status)
		},
	}
}

func printSections(w io.Writer, format output.Format, res *changes.SliceResult) error {
	f := output.NewFormatter(format)
	for _, name := range res.Sections.Names() {
		recs := res.Sections[name]
		if len(recs) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "%s\n", name); err != nil {
			return err
		}
		if err := f.Format(w, recs); err != nil {
			return err
		}
	}
	return nil
}
