package quirks

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyPattern    = errors.New("error: empty pattern")
	ErrBadPattern      = errors.New("error: invalid regular expression")
	ErrBadPercentage   = errors.New("error: percentage must be between 0 and 100")
	ErrNoSuchGroup     = errors.New("error: no such group")
	ErrFunctionPanic   = errors.New("error: transform function panicked")
	ErrQuirkNotFound   = errors.New("error: quirk not found")
	ErrDuplicateQuirk  = errors.New("error: duplicate quirk id")
	ErrInvalidFuncFile = errors.New("error: invalid function file")
)

// ErrorType represents the category of a quirk error
type ErrorType string

const (
	// ErrorTypeConfig is raised when a quirk is created or edited.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeApply is raised while a collection is applied to a message.
	ErrorTypeApply ErrorType = "apply"
)

// Error is a user facing quirk error.
type Error struct {
	Type  ErrorType
	Op    string // operation that failed
	Quirk string // description of the offending quirk
	Err   error  // underlying error
}

func (e *Error) Error() string {
	if e.Quirk != "" {
		return fmt.Sprintf("quirk %s error in %s (%s): %v", e.Type, e.Op, e.Quirk, e.Err)
	}
	return fmt.Sprintf("quirk %s error in %s: %v", e.Type, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is allows matching on error type
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Type == t.Type
	}
	return false
}

func configError(op, quirk string, err error) *Error {
	return &Error{Type: ErrorTypeConfig, Op: op, Quirk: quirk, Err: err}
}

func applyError(op, quirk string, err error) *Error {
	return &Error{Type: ErrorTypeApply, Op: op, Quirk: quirk, Err: err}
}

// IsConfigError checks if err is a quirk configuration error
func IsConfigError(err error) bool {
	var qe *Error
	return err != nil && errors.As(err, &qe) && qe.Type == ErrorTypeConfig
}

// IsApplyError checks if err is an apply-time quirk error
func IsApplyError(err error) bool {
	var qe *Error
	return err != nil && errors.As(err, &qe) && qe.Type == ErrorTypeApply
}

// ListError collects errors from loaders that are skipped rather than fatal.
type ListError []error

func (e ListError) Error() string {
	var b strings.Builder
	for _, err := range e {
		b.WriteString(err.Error())
		b.WriteRune('\n')
	}
	return b.String()
}
