// Package errors provides custom error types for the sheetsync system.
// These errors enable programmatic error checking and carry enough context
// (section, file, line) to triage a failed run without re-running it.
package errors

import (
	"errors"
	"fmt"
)

// Aliases for the standard library helpers, so callers need one import.
var (
	New = errors.New
	Is  = errors.Is
	As  = errors.As
)

// Common sentinel errors for the sheetsync system
var (
	// ErrNotFound indicates that a requested resource was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingInput indicates that a required input file or directory is absent
	ErrMissingInput = errors.New("missing input")

	// ErrMalformedRecord indicates a record lacks its identifying field
	ErrMalformedRecord = errors.New("malformed record")

	// ErrUnparsableDiff indicates diff text without the expected structure
	ErrUnparsableDiff = errors.New("unparsable diff")

	// ErrLocked indicates another invocation holds the data directory
	ErrLocked = errors.New("locked")

	// ErrCanceled indicates that an operation was canceled
	ErrCanceled = errors.New("operation canceled")
)

// MissingInputError represents a required file or directory that is absent.
type MissingInputError struct {
	Kind string // "diff", "baseline directory", "section", ...
	Path string
	Err  error
}

// Error implements the error interface
func (e *MissingInputError) Error() string {
	if e.Kind != "" {
		return fmt.Sprintf("missing %s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("missing input: %s", e.Path)
}

// Unwrap implements errors.Unwrap
func (e *MissingInputError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *MissingInputError) Is(target error) bool {
	return target == ErrMissingInput || target == ErrNotFound
}

// NewMissingInputError creates a new MissingInputError
func NewMissingInputError(kind, path string, err error) *MissingInputError {
	return &MissingInputError{Kind: kind, Path: path, Err: err}
}

// MalformedRecordError represents a record that lacks its identifying field
// and therefore cannot be matched.
type MalformedRecordError struct {
	Section string
	Field   string
	Index   int // position of the record within its collection
	Origin  string
}

// Error implements the error interface
func (e *MalformedRecordError) Error() string {
	if e.Origin != "" {
		return fmt.Sprintf("%s record %d in section %s has no %s field", e.Origin, e.Index, e.Section, e.Field)
	}
	return fmt.Sprintf("record %d in section %s has no %s field", e.Index, e.Section, e.Field)
}

// Is implements errors.Is support
func (e *MalformedRecordError) Is(target error) bool {
	return target == ErrMalformedRecord
}

// NewMalformedRecordError creates a new MalformedRecordError
func NewMalformedRecordError(origin, section, field string, index int) *MalformedRecordError {
	return &MalformedRecordError{Origin: origin, Section: section, Field: field, Index: index}
}

// UnparsableDiffError represents diff text that does not carry the
// structural markers the extractor relies on.
type UnparsableDiffError struct {
	File    string
	Line    int
	Message string
}

// Error implements the error interface
func (e *UnparsableDiffError) Error() string {
	switch {
	case e.File != "" && e.Line > 0:
		return fmt.Sprintf("unparsable diff %s at line %d: %s", e.File, e.Line, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("unparsable diff at line %d: %s", e.Line, e.Message)
	case e.File != "":
		return fmt.Sprintf("unparsable diff %s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("unparsable diff: %s", e.Message)
}

// Is implements errors.Is support
func (e *UnparsableDiffError) Is(target error) bool {
	return target == ErrUnparsableDiff
}

// NewUnparsableDiffError creates a new UnparsableDiffError
func NewUnparsableDiffError(file string, line int, message string) *UnparsableDiffError {
	return &UnparsableDiffError{File: file, Line: line, Message: message}
}

// NotFoundError represents an error when a resource is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with ID %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value any, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a ConfigError.
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// SectionError ties a failure to the section it happened in. Section
// failures never abort sibling sections.
type SectionError struct {
	Section string
	Err     error
}

// Error implements the error interface
func (e *SectionError) Error() string {
	return fmt.Sprintf("section %s: %v", e.Section, e.Err)
}

// Unwrap implements errors.Unwrap
func (e *SectionError) Unwrap() error {
	return e.Err
}

// WrapSection attributes err to section. It returns nil for a nil err.
func WrapSection(section string, err error) error {
	if err == nil {
		return nil
	}
	return &SectionError{Section: section, Err: err}
}

// ParseError represents an error when parsing data formats
type ParseError struct {
	Format  string // "json", "xlsx", "manifest", ...
	File    string
	Line    int
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" && e.Line > 0 {
		return fmt.Sprintf("parse error in %s at %s:%d: %s", e.Format, e.File, e.Line, e.Message)
	}
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewParseError creates a ParseError without a line number.
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{Format: format, File: file, Message: message, Err: err}
}

// WrapParse reports err as a parse failure of file. It returns nil for a
// nil err.
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// IOError is a filesystem failure on a workspace path.
type IOError struct {
	Operation string // read, write, create, delete, rename
	Path      string
	Err       error
}

func (e *IOError) Error() string {
	msg := "IO error during " + e.Operation
	if e.Path != "" {
		msg += " of " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *IOError) Unwrap() error { return e.Err }

// WrapIO returns nil for a nil err.
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return &IOError{Operation: operation, Path: path, Err: err}
}

// ResourceError reports a failed operation on a named thing: a section
// directory, the watcher, the git client.
type ResourceError struct {
	Operation string
	Resource  string
	ID        string
	Err       error
}

func (e *ResourceError) Error() string {
	target := e.Resource
	if e.ID != "" {
		target += " " + e.ID
	}
	if e.Err == nil {
		return fmt.Sprintf("failed to %s %s", e.Operation, target)
	}
	return fmt.Sprintf("failed to %s %s: %v", e.Operation, target, e.Err)
}

func (e *ResourceError) Unwrap() error { return e.Err }

// NewResourceError creates a ResourceError.
func NewResourceError(operation, resource, id string, err error) *ResourceError {
	return &ResourceError{Operation: operation, Resource: resource, ID: id, Err: err}
}

// WrapResource returns nil for a nil err.
func WrapResource(operation, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	return NewResourceError(operation, resource, id, err)
}

// ProcessError is a failed external command, git in practice. Command and
// Output must already have credentials removed.
type ProcessError struct {
	Operation string
	Command   string
	Output    string
	ExitCode  int
	Err       error
}

func (e *ProcessError) Error() string {
	msg := fmt.Sprintf("process error during %s (command: %s): %v", e.Operation, e.Command, e.Err)
	if e.Output != "" {
		msg += "\nOutput: " + e.Output
	}
	return msg
}

func (e *ProcessError) Unwrap() error { return e.Err }

// NewProcessError creates a ProcessError.
func NewProcessError(operation, command, output string, err error) *ProcessError {
	return &ProcessError{Operation: operation, Command: command, Output: output, Err: err}
}

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsValidationError reports whether err is invalid input, including parse
// failures.
func IsValidationError(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsMissingInput reports whether a required file or directory was absent.
func IsMissingInput(err error) bool { return errors.Is(err, ErrMissingInput) }

// IsMalformedRecord reports whether a record had no identifying field.
func IsMalformedRecord(err error) bool { return errors.Is(err, ErrMalformedRecord) }

// IsUnparsableDiff reports whether diff text lacked its structure.
func IsUnparsableDiff(err error) bool { return errors.Is(err, ErrUnparsableDiff) }

// IsLocked reports whether another run held the data directory.
func IsLocked(err error) bool { return errors.Is(err, ErrLocked) }

// IsCanceled reports whether the operation was canceled.
func IsCanceled(err error) bool { return errors.Is(err, ErrCanceled) }
