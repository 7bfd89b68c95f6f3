// Package doclayout holds the error model shared by the layout editor packages.
//
// The editor itself is split into layout (element model), geometry (collision
// and sizing rules), placeholder (token substitution), store (persisted
// templates), canvas (pointer-driven editing) and export (PDF output).
package doclayout

import (
	"errors"
	"fmt"
)

// Sentinel errors for template and element operations.
var (
	ErrNotFound          = errors.New("doclayout: template not found")
	ErrProtectedTemplate = errors.New("doclayout: template is protected and can only be duplicated")
	ErrDuplicateName     = errors.New("doclayout: a template with that name already exists")
	ErrInvalidName       = errors.New("doclayout: template name is empty")
	ErrUnknownElement    = errors.New("doclayout: element not found")
	ErrLockedElement     = errors.New("doclayout: element is locked")
	ErrUnsupported       = errors.New("doclayout: unsupported operation")
)

// Error represents a failed operation on a named template or element.
// It wraps an underlying error and includes the operation name for context.
type Error struct {
	Op   string // operation name, e.g. "Rename", "Delete"
	Name string // template or element the operation targeted
	Err  error  // underlying error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("doclayout.%s %q: unknown error", e.Op, e.Name)
	}
	if e.Name == "" {
		return fmt.Sprintf("doclayout.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("doclayout.%s %q: %v", e.Op, e.Name, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new Error wrapping err with operation context.
func NewError(op, name string, err error) *Error {
	return &Error{Op: op, Name: name, Err: err}
}
