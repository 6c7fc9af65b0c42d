// Package emoji holds the status marks that prefix CLI result lines and
// table rows.
package emoji

const (
	// Success marks a merged section or a published commit.
	Success = "✓"
	// Error marks a failed section or a fatal input.
	Error = "✗"
	// Warning marks a result with skipped or duplicate records.
	Warning = "!"
	// Optional marks work that was skipped, such as a dry run or an empty
	// commit.
	Optional = "-"
)
