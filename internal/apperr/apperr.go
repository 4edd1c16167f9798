// Package apperr defines the error kinds surfaced by a workspace-env run.
// Errors carry a stable Code so callers and tests can match on the kind with
// errors.Is regardless of the message.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Code identifies a class of failure.
type Code string

const (
	// CodeNoWorkspacesFound means no manifest source yielded workspaces or a
	// workspace pattern matched nothing.
	CodeNoWorkspacesFound Code = "NO_WORKSPACES_FOUND"

	// CodeInvalidConfig means the configuration file failed validation.
	CodeInvalidConfig Code = "INVALID_CONFIG"

	// CodeUnknownWorkspace means a profile referenced a workspace name that
	// discovery did not produce.
	CodeUnknownWorkspace Code = "UNKNOWN_WORKSPACE"

	// CodeMissingWorkspaceManifest means a workspace directory has no readable
	// manifest declaring its name.
	CodeMissingWorkspaceManifest Code = "MISSING_WORKSPACE_MANIFEST"

	// CodeSyncIO means one or more file operations failed during sync.
	CodeSyncIO Code = "SYNC_IO"
)

// Sentinels for errors.Is. Only the Code is compared.
var (
	ErrNoWorkspacesFound        = &Error{Code: CodeNoWorkspacesFound}
	ErrInvalidConfig            = &Error{Code: CodeInvalidConfig}
	ErrUnknownWorkspace         = &Error{Code: CodeUnknownWorkspace}
	ErrMissingWorkspaceManifest = &Error{Code: CodeMissingWorkspaceManifest}
	ErrSyncIO                   = &Error{Code: CodeSyncIO}
)

// Error is a coded error with optional key/value details naming the pattern,
// workspace or file involved.
type Error struct {
	Code    Code
	Message string
	Details map[string]string
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString(e.Message)
	if b.Len() == 0 {
		b.WriteString(strings.ToLower(strings.ReplaceAll(string(e.Code), "_", " ")))
	}

	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%q", k, e.Details[k]))
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, " "))
	}

	if e.Wrapped != nil {
		fmt.Fprintf(&b, ": %v", e.Wrapped)
	}

	return b.String()
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Wrapped
}

// Is reports whether target is an *Error with the same Code.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New creates an Error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to err. Returns nil if err is nil.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Wrapped: err}
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Wrapped: err}
}

// WithDetail records a key/value pair on the error and returns it.
func (e *Error) WithDetail(key, value string) *Error {
	if e.Details == nil {
		e.Details = make(map[string]string)
	}
	e.Details[key] = value
	return e
}

// CodeOf returns the Code of the first *Error in err's chain, or "" if there
// is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
