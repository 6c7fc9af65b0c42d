// Package merge provides the merge command.
package merge

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync"
	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/internal/cmd/output"
	"github.com/agentstation/sheetsync/internal/cmd/table"
	"github.com/agentstation/sheetsync/pkg/errors"
)

// Flags holds merge flags.
type Flags struct {
	DryRun            bool
	FreshSectionsOnly bool
	Sections          []string
}

// NewCommand creates the merge command using app context.
func NewCommand(app application.Application) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "merge",
		GroupID: "core",
		Short:   "Reconcile imported sections into the data directory",
		Long: `Merge reconciles each section of the export directory into the data
directory. Records present in the export replace their baseline versions;
baseline records missing from the export are kept with Command=DELETE.

Sections are independent: one unreadable section fails alone and the
command exits non-zero after writing the others.`,
		Example: `  sheetsync merge                          # Merge every section
  sheetsync merge --dry-run -o json        # Preview the statistics
  sheetsync merge --fresh-sections-only    # Do not tombstone absent sections
  sheetsync merge --section Products       # Merge one section`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			res, err := client.Merge(cmd.Context(),
				sheetsync.WithDryRun(flags.DryRun),
				sheetsync.WithFreshSectionsOnly(flags.FreshSectionsOnly),
				sheetsync.WithSections(flags.Sections...),
			)
			if err != nil {
				return err
			}

			format := output.DetectFormat(app.OutputFormat())
			data := table.MergeToTableData(res, format == output.FormatWide)
			summary := res.Summary()
			if flags.DryRun {
				summary = output.Skipped("Dry run, nothing written. " + summary)
			} else {
				summary = output.Status(res.IsSuccess(), len(res.Warnings), summary)
			}
			if err := output.Render(cmd.OutOrStdout(), format, output.NewMergeReport(res, flags.DryRun), &data, summary); err != nil {
				return err
			}

			if !res.IsSuccess() {
				return errors.NewResourceError("merge", "sections", "", res.Errors[0])
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "compute the merge without writing")
	cmd.Flags().BoolVar(&flags.FreshSectionsOnly, "fresh-sections-only", false, "only reconcile sections present in the export")
	cmd.Flags().StringSliceVar(&flags.Sections, "section", nil, "restrict to these sections (repeatable)")

	return cmd
}
