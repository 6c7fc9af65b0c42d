package sheetsync

import (
	"context"

	"github.com/agentstation/sheetsync/internal/store"
	"github.com/agentstation/sheetsync/internal/workbook"
	"github.com/agentstation/sheetsync/pkg/logging"
)

// ImportResult describes an imported workbook.
type ImportResult struct {
	Workbook  string         `json:"workbook" yaml:"workbook"`
	OutputDir string         `json:"output_dir" yaml:"output_dir"`
	Sections  map[string]int `json:"sections" yaml:"sections"`
}

// Import implements Client.
func (c *client) Import(ctx context.Context) (*ImportResult, error) {
	ctx = logging.WithOperation(ctx, "import")

	path, err := workbook.FindSingle(c.cfg.resolve(c.cfg.workbookDir))
	if err != nil {
		return nil, err
	}
	return c.importWorkbook(ctx, path)
}

// importWorkbook converts the workbook at path, replacing the export
// directory's sections.
func (c *client) importWorkbook(ctx context.Context, path string) (*ImportResult, error) {
	logger := logging.FromContext(ctx)
	logger.Info().Str("workbook", path).Msg("Reading workbook")

	sections, err := workbook.Read(path, c.cfg.excludedSheets)
	if err != nil {
		return nil, err
	}

	out, err := store.Create(c.cfg.resolve(c.cfg.exportDir))
	if err != nil {
		return nil, err
	}
	// Sections left over from an earlier workbook would be merged as fresh.
	if err := out.Clear(); err != nil {
		return nil, err
	}
	if err := out.SaveAll(sections); err != nil {
		return nil, err
	}

	res := &ImportResult{Workbook: path, OutputDir: out.Path(), Sections: map[string]int{}}
	for name, recs := range sections {
		res.Sections[name] = len(recs)
	}
	logger.Info().Int("sections", len(sections)).Str("dir", out.Path()).Msg("Workbook imported")
	return res, nil
}
