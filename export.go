package sheetsync

import (
	"context"
	"path/filepath"

	"github.com/agentstation/utc"

	"github.com/agentstation/sheetsync/internal/store"
	"github.com/agentstation/sheetsync/internal/workbook"
	"github.com/agentstation/sheetsync/pkg/logging"
)

// ExportResult describes a generated workbook.
type ExportResult struct {
	Path     string         `json:"path" yaml:"path"`
	Sections map[string]int `json:"sections" yaml:"sections"`
}

// Export implements Client.
func (c *client) Export(ctx context.Context, dir string) (*ExportResult, error) {
	ctx = logging.WithOperation(ctx, "export")
	logger := logging.FromContext(ctx)

	if dir == "" {
		dir = c.cfg.dataDir
	}
	src, err := store.Open(c.cfg.resolve(dir))
	if err != nil {
		return nil, err
	}
	sections, err := src.LoadAll()
	if err != nil {
		return nil, err
	}

	outDir, err := store.Create(c.cfg.resolve(c.cfg.workbookOutputDir))
	if err != nil {
		return nil, err
	}
	path := filepath.Join(outDir.Path(), workbook.ExportName(utc.Now()))
	if err := workbook.Write(path, sections); err != nil {
		return nil, err
	}

	res := &ExportResult{Path: path, Sections: make(map[string]int, len(sections))}
	for name, recs := range sections {
		res.Sections[name] = len(recs)
	}
	logger.Info().
		Str("workbook", path).
		Int("sections", len(sections)).
		Str("source", src.Path()).
		Msg("Workbook exported")
	return res, nil
}

