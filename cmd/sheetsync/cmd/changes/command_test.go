package changes

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/sheetsync"
	"github.com/agentstation/sheetsync/cmd/application"
	"github.com/agentstation/sheetsync/pkg/records"
)

func run(t *testing.T, ws, format, diff string) (string, error) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(ws, "changes.diff"), []byte(diff), 0o644))

	mock := &application.Mock{
		Options: []sheetsync.Option{
			sheetsync.WithWorkspace(ws),
			sheetsync.WithDataDir("data"),
			sheetsync.WithDiffFile("changes.diff"),
		},
		Format: format,
	}

	var out bytes.Buffer
	cmd := NewCommand(mock)
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func workspace(t *testing.T) string {
	t.Helper()
	ws := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(ws, "data"), 0o755))
	recs := []records.Record{
		records.New(records.F("ID", "7"), records.F("Handle", "home")),
		records.New(records.F("ID", "8"), records.F("Handle", "faq")),
	}
	require.NoError(t, os.WriteFile(filepath.Join(ws, "data", "Pages.json"), records.Encode(recs), 0o644))
	return ws
}

const diff = `diff --git a/data/Pages.json b/data/Pages.json
@@ -7,3 +7,3 @@
         "ID": "8",
-        "Handle": "faq"
+        "Handle": "help"
`

func TestChangesCommandTable(t *testing.T) {
	out, err := run(t, workspace(t), "table", diff)
	require.NoError(t, err)
	assert.Contains(t, out, "Pages")
	assert.Contains(t, out, "Extracted 1 records for 1 changed identifiers")
}

func TestChangesCommandJSON(t *testing.T) {
	out, err := run(t, workspace(t), "json", diff)
	require.NoError(t, err)
	assert.Contains(t, out, `"changed": true`)
	assert.Contains(t, out, `"Pages": [`)
	assert.Contains(t, out, `"faq"`)
}

func TestChangesCommandNoChanges(t *testing.T) {
	out, err := run(t, workspace(t), "table", "diff --git a/README.md b/README.md\n")
	require.NoError(t, err)
	assert.Contains(t, out, "No changes detected")
}
