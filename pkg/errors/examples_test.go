package errors_test

import (
	"fmt"

	"github.com/agentstation/sheetsync/pkg/errors"
)

// Example demonstrates basic error creation and checking.
func Example() {
	err := errors.NewMissingInputError("diff", "changes/git-diff/changes.diff", nil)

	if errors.IsMissingInput(err) {
		fmt.Println("Nothing to extract")
	}

	// Output: Nothing to extract
}

// Example_sectionError shows how per-section failures keep their cause.
func Example_sectionError() {
	err := errors.WrapSection("Pages", errors.NewParseError("json", "Pages.json", "expected array", nil))

	fmt.Println(err)
	fmt.Println(errors.IsValidationError(err))

	// Output:
	// section Pages: parse error in json file Pages.json: expected array
	// true
}
