// Package watch provides the watch command.
package watch

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync"
	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/pkg/reconciler"
)

// NewCommand creates the watch command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		settle            time.Duration
		freshSectionsOnly bool
	)

	cmd := &cobra.Command{
		Use:     "watch",
		GroupID: "core",
		Short:   "Import and merge every workbook dropped into the workbook directory",
		Long: `Watch keeps running and, whenever a workbook lands in the workbook
directory and stays untouched for the settle period, runs import then merge.
A failed run is logged and watching continues. Stop with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			logger := app.Logger()
			client.OnSectionMerged(func(s *reconciler.SectionResult) {
				logger.Info().Str("section", s.Name).Str("stats", s.Stats.String()).Msg("Section merged")
			})
			return client.Watch(cmd.Context(), settle, sheetsync.WithFreshSectionsOnly(freshSectionsOnly))
		},
	}

	cmd.Flags().DurationVar(&settle, "settle", 0, "quiet period before a workbook is processed (default 2s)")
	cmd.Flags().BoolVar(&freshSectionsOnly, "fresh-sections-only", false, "only reconcile sections present in the workbook")

	return cmd
}
