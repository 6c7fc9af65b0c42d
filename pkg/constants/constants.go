// Package constants provides shared constants used throughout the sheetsync codebase.
// This includes file permissions, default directory layout, record field names and
// publishing defaults that should be consistent across the application.
package constants

import "time"

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Record field constants
const (
	// FieldHandle is the identifying field of most sections
	FieldHandle = "Handle"

	// FieldID is the identifying field of sections whose handles are not stable
	FieldID = "ID"

	// FieldCommand is the field the import format reads row commands from
	FieldCommand = "Command"

	// CommandDelete marks a record for deletion on the next import
	CommandDelete = "DELETE"
)

// IDSections are the sections keyed by ID rather than Handle by default.
var IDSections = []string{"Redirects", "Files", "Menus"}

// ExcludedSheets are workbook sheets that never become sections.
var ExcludedSheets = []string{"Export Summary"}

// Default directory layout, relative to the workspace
const (
	// DefaultDataDir holds the source-of-truth section files
	DefaultDataDir = "repo-shopify-data"

	// DefaultExportDir receives sections converted from a fresh workbook
	DefaultExportDir = "output_json"

	// DefaultWorkbookDir is where a single fresh workbook is dropped
	DefaultWorkbookDir = "developer_export"

	// DefaultWorkbookOutputDir receives generated workbooks
	DefaultWorkbookOutputDir = "final-matrixify-export"

	// DefaultDiffFile is the unified diff produced by the version-control step
	DefaultDiffFile = "changes/git-diff/changes.diff"

	// DefaultManifestFile is the changed-IDs manifest
	DefaultManifestFile = "changes/id-output/changed_ids.txt"

	// DefaultChangesDir receives change-only section files
	DefaultChangesDir = "changes/final-output"

	// LockFileName is created inside the data directory while it is being rewritten
	LockFileName = ".sheetsync.lock"
)

// Format constants
const (
	// TimeFormatFilename is the format used in generated workbook names
	TimeFormatFilename = "2006-01-02_150405"

	// WorkbookExtension is the extension of spreadsheet files
	WorkbookExtension = ".xlsx"

	// SectionExtension is the extension of section files
	SectionExtension = ".json"

	// JSONIndent is the indentation of written section files
	JSONIndent = "    "
)

// Publishing constants
const (
	// DefaultBranch is pushed to when no branch is configured
	DefaultBranch = "main"

	// DefaultRemote is used when no token URL can be built
	DefaultRemote = "origin"

	// DefaultPushAttempts is the number of push attempts before giving up
	DefaultPushAttempts = 3

	// DefaultPushBackoff is the base delay between push attempts
	DefaultPushBackoff = 2 * time.Second

	// GitHubHost is the host used for token-authenticated remotes
	GitHubHost = "github.com"

	// CommandTimeout bounds a publish run, retries included
	CommandTimeout = 10 * time.Minute
)
