// Package errors defines the error taxonomy shared by the asset compilation
// pipeline: CompileError for failed external compiler invocations,
// DependencyError for missing source assets, and ParseError for malformed
// block declarations.
//
// None of these are recovered internally. A failing block aborts only that
// block's compilation; the build driver decides whether to continue with the
// remaining blocks.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// CompileError indicates that an external compiler process exited nonzero.
// It carries the command that was run and the captured stderr text so the
// failure is actionable without re-running the tool by hand.
type CompileError struct {
	Command []string
	Stderr  string
	Cause   error
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	msg := fmt.Sprintf("compile failed: %s", strings.Join(e.Command, " "))
	if e.Stderr != "" {
		msg += ": " + strings.TrimSpace(e.Stderr)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error.
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// NewCompileError creates a CompileError for the given command invocation.
func NewCompileError(command []string, stderr string, cause error) *CompileError {
	// Copy the command so later mutation by the caller can't change the error.
	cmd := make([]string, len(command))
	copy(cmd, command)
	return &CompileError{Command: cmd, Stderr: stderr, Cause: cause}
}

// DependencyError indicates that one or more declared asset paths do not
// exist. All missing paths are collected before the error is raised so a
// single error names everything that needs fixing.
type DependencyError struct {
	Source  string // what declared the dependency (block name hash, CSS url() ref, ...)
	Missing []string
}

// Error implements the error interface.
func (e *DependencyError) Error() string {
	return fmt.Sprintf("missing dependencies for %s: %s", e.Source, strings.Join(e.Missing, ", "))
}

// NewDependencyError creates a DependencyError listing every missing path.
func NewDependencyError(source string, missing []string) *DependencyError {
	paths := make([]string, len(missing))
	copy(paths, missing)
	return &DependencyError{Source: source, Missing: paths}
}

// ParseError indicates malformed block declaration or manifest input.
type ParseError struct {
	File    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	msg := e.Message
	if e.File != "" {
		msg = e.File + ": " + msg
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause error.
func (e *ParseError) Unwrap() error {
	return e.Cause
}

// NewParseError creates a ParseError for the given file.
func NewParseError(file, message string, cause error) *ParseError {
	return &ParseError{File: file, Message: message, Cause: cause}
}

// IsCompileError reports whether err is (or wraps) a CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

// IsDependencyError reports whether err is (or wraps) a DependencyError.
func IsDependencyError(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
