package sheetsync

import (
	"context"
	"os"
	"time"

	"github.com/agentstation/sheetsync/internal/watch"
	"github.com/agentstation/sheetsync/pkg/constants"
	"github.com/agentstation/sheetsync/pkg/errors"
	"github.com/agentstation/sheetsync/pkg/logging"
)

// Watch implements Client. Each settled workbook is imported by path, so
// earlier drops left in the directory do not block later ones. Failed runs
// are logged and watching continues.
func (c *client) Watch(ctx context.Context, settle time.Duration, opts ...MergeOption) error {
	ctx = logging.WithOperation(ctx, "watch")
	dir := c.cfg.resolve(c.cfg.workbookDir)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}

	var wopts []watch.Option
	if settle > 0 {
		wopts = append(wopts, watch.WithSettle(settle))
	}
	return watch.New(dir, wopts...).Run(ctx, func(ctx context.Context, path string) error {
		logger := logging.FromContext(ctx)
		logger.Info().Str("workbook", path).Msg("Workbook settled")

		if _, err := c.importWorkbook(logging.WithOperation(ctx, "import"), path); err != nil {
			return err
		}
		res, err := c.Merge(ctx, opts...)
		if err != nil {
			return err
		}
		if !res.IsSuccess() {
			return errors.NewResourceError("merge", "sections", "", res.Errors[0])
		}
		return nil
	})
}
