// Package publish provides the publish command.
package publish

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/internal/cmd/output"
	"github.com/agentstation/sheetsync/internal/cmd/table"
	"github.com/agentstation/sheetsync/pkg/constants"
)

// NewCommand creates the publish command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var message string

	cmd := &cobra.Command{
		Use:     "publish [paths...]",
		GroupID: "management",
		Short:   "Commit paths and push them to the configured branch",
		Long: `Publish stages the given paths (relative to the workspace), commits them
and pushes to git.branch. With git.token and git.repository set, the push
goes to an authenticated GitHub URL; the token never appears in output.

Rejected pushes are retried git.push_attempts times, rebasing in between
when git.rebase_on_reject is set; git.force_push forces the final attempt.
Nothing to commit is not an error.`,
		Example: `  sheetsync publish repo-shopify-data -m "Update store data"
  sheetsync publish final-matrixify-export changes -m "Export changes"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := app.Client()
			if err != nil {
				return err
			}
			// Pushes retry with backoff; bound the whole run.
			ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
			defer cancel()
			res, err := client.Publish(ctx, args, message)
			if err != nil {
				return err
			}

			status := output.Skipped("Nothing to commit")
			if res.Committed {
				msg := fmt.Sprintf("Committed %s", res.Commit)
				if res.Push != nil {
					msg += fmt.Sprintf(" and pushed in %d attempt(s)", res.Push.Attempts)
					if res.Push.Forced {
						msg += " (forced)"
					}
				}
				status = output.Status(true, 0, msg)
			}
			var data *table.Data
			if res.Committed {
				if props, ok := output.PropertiesTable(res); ok {
					data = &props
				}
			}
			return output.Render(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), res, data, status)
		},
	}

	cmd.Flags().StringVarP(&message, "message", "m", "Update store data", "commit message")

	return cmd
}
