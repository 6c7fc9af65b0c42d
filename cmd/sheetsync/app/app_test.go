package app

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/sheetsync"
	"github.com/agentstation/sheetsync/pkg/records"
)

func nopLogger() *zerolog.Logger {
	logger := zerolog.Nop()
	return &logger
}

// testApp builds an App over a workspace with data and export directories.
func testApp(t *testing.T, out *bytes.Buffer) (*App, string) {
	t.Helper()
	ws := t.TempDir()
	config := &Config{
		Workspace: ws,
		DataDir:   "data",
		ExportDir: "export",
		KeyField:  "Handle",
		LogOutput: "discard",
		LogFormat: "json",
	}
	app, err := New("1.0.0", "abc123", "2024-01-01", "test",
		WithConfig(config), WithLogger(nopLogger()), WithOutput(out))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return app, ws
}

func writeSection(t *testing.T, dir, section string, recs ...records.Record) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, section+".json"), records.Encode(recs), 0o644); err != nil {
		t.Fatal(err)
	}
}

// TestApp_New verifies app initialization.
func TestApp_New(t *testing.T) {
	app, err := New("1.0.0", "abc123", "2024-01-01", "test")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	info := app.Build()
	if info.Version != "1.0.0" || info.Commit != "abc123" || info.Date != "2024-01-01" || info.BuiltBy != "test" {
		t.Errorf("Build() = %+v", info)
	}
	if info.Go == "" {
		t.Error("Build().Go is empty")
	}
	if app.Logger() == nil {
		t.Error("Logger() returned nil")
	}
	if app.Config() == nil {
		t.Error("Config() returned nil")
	}
}

// TestApp_Client_ThreadSafe verifies concurrent Client() calls share one instance.
func TestApp_Client_ThreadSafe(t *testing.T) {
	app, _ := testApp(t, &bytes.Buffer{})

	const goroutines = 50
	var wg sync.WaitGroup
	results := make([]sheetsync.Client, goroutines)
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			c, err := app.Client()
			if err != nil {
				t.Errorf("Client() failed: %v", err)
				return
			}
			results[idx] = c
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if results[i] != results[0] {
			t.Fatal("Client() returned different instances, expected singleton")
		}
	}
}

// TestApp_WithClient verifies a custom client is used as is.
func TestApp_WithClient(t *testing.T) {
	custom, err := sheetsync.New()
	if err != nil {
		t.Fatal(err)
	}
	app, err := New("1.0.0", "", "", "", WithClient(custom), WithLogger(nopLogger()))
	if err != nil {
		t.Fatal(err)
	}
	got, err := app.Client()
	if err != nil {
		t.Fatal(err)
	}
	if got != custom {
		t.Error("Client() did not return the injected client")
	}
}

// TestExecute_MergeDryRun runs the merge command end to end.
func TestExecute_MergeDryRun(t *testing.T) {
	var out bytes.Buffer
	app, ws := testApp(t, &out)

	writeSection(t, filepath.Join(ws, "data"), "Pages",
		records.New(records.F("Handle", "about"), records.F("Title", "About")))
	writeSection(t, filepath.Join(ws, "export"), "Pages",
		records.New(records.F("Handle", "contact"), records.F("Title", "Contact")))

	if err := app.Execute(context.Background(), []string{"merge", "--dry-run", "-o", "json"}); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}

	var report struct {
		DryRun   bool `json:"dry_run"`
		Success  bool `json:"success"`
		Sections []struct {
			Name  string `json:"name"`
			Stats struct {
				Inserted   int `json:"inserted"`
				Tombstoned int `json:"tombstoned"`
			} `json:"stats"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if !report.DryRun || !report.Success {
		t.Errorf("report = %+v", report)
	}
	if len(report.Sections) != 1 || report.Sections[0].Stats.Inserted != 1 || report.Sections[0].Stats.Tombstoned != 1 {
		t.Errorf("sections = %+v", report.Sections)
	}

	data, err := os.ReadFile(filepath.Join(ws, "data", "Pages.json"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "DELETE") {
		t.Error("dry run wrote the data directory")
	}
}

// TestExecute_MissingDataDir verifies fatal inputs surface as errors.
func TestExecute_MissingDataDir(t *testing.T) {
	app, _ := testApp(t, &bytes.Buffer{})
	err := app.Execute(context.Background(), []string{"merge"})
	if err == nil {
		t.Fatal("Execute() should fail without a data directory")
	}
	if !strings.Contains(err.Error(), "missing section directory") {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestExecute_InvalidFormat verifies format validation.
func TestExecute_InvalidFormat(t *testing.T) {
	app, _ := testApp(t, &bytes.Buffer{})
	if err := app.Execute(context.Background(), []string{"version", "-o", "xml"}); err == nil {
		t.Error("Execute() should reject an unknown format")
	}
}

// TestExecute_Version verifies version output.
func TestExecute_Version(t *testing.T) {
	var out bytes.Buffer
	app, _ := testApp(t, &out)
	if err := app.Execute(context.Background(), []string{"version"}); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(out.String(), "sheetsync 1.0.0") {
		t.Errorf("version output = %q", out.String())
	}
}

// TestExecute_VersionJSON verifies -o json prints the build information.
func TestExecute_VersionJSON(t *testing.T) {
	var out bytes.Buffer
	app, _ := testApp(t, &out)
	if err := app.Execute(context.Background(), []string{"version", "-o", "json"}); err != nil {
		t.Fatal(err)
	}
	var info BuildInfo
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out.String())
	}
	if info.Version != "1.0.0" || info.BuiltBy != "test" {
		t.Errorf("info = %+v", info)
	}
}

// TestExecute_ConfigFormatIsFlagDefault verifies a configured format
// survives flag parsing when -o is not given.
func TestExecute_ConfigFormatIsFlagDefault(t *testing.T) {
	var out bytes.Buffer
	app, ws := testApp(t, &out)
	app.Config().Format = "json"

	writeSection(t, filepath.Join(ws, "data"), "Pages")
	writeSection(t, filepath.Join(ws, "export"), "Pages")

	if err := app.Execute(context.Background(), []string{"merge", "--dry-run"}); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !json.Valid(out.Bytes()) {
		t.Errorf("expected JSON output, got %q", out.String())
	}
}

// TestExecute_ExplicitConfigWins verifies values from --config are not
// overwritten by defaults taken from the previously loaded config.
func TestExecute_ExplicitConfigWins(t *testing.T) {
	var out bytes.Buffer
	app, ws := testApp(t, &out)
	app.Config().Format = "json"

	writeSection(t, filepath.Join(ws, "data"), "Pages")
	writeSection(t, filepath.Join(ws, "export"), "Pages")

	path := filepath.Join(ws, "sheetsync.yaml")
	yaml := "workspace: " + ws + "\ndata_dir: data\nexport_dir: export\nformat: yaml\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := app.Execute(context.Background(), []string{"--config", path, "merge", "--dry-run"}); err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "dry_run: true") {
		t.Errorf("expected YAML output, got %q", out.String())
	}
}
