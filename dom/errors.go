package dom

import (
	"errors"
	"fmt"
)

// Precondition errors. These are reported before any mutation takes place.
var (
	// ErrDisposed indicates an operation on a disposed node.
	ErrDisposed = errors.New("node is disposed")

	// ErrFrozen indicates a mutation of a frozen node.
	ErrFrozen = errors.New("node is frozen")

	// ErrLocked indicates a mutation of a locked node or an attempt to clear
	// an inherited lock.
	ErrLocked = errors.New("node is locked")

	// ErrNotMember indicates that a node is not a member of the collection
	// it is being removed from or replaced in.
	ErrNotMember = errors.New("node is not a member of the collection")

	// ErrInvalid indicates a nil or otherwise unusable argument.
	ErrInvalid = errors.New("invalid argument")
)

// Structural errors. These correspond to failed insertion verdicts.
var (
	ErrAlreadyMember       = errors.New("node already belongs to a collection")
	ErrDuplicateName       = errors.New("name is already in use")
	ErrTopLevelNotAllowed  = errors.New("collection does not accept top-level elements")
	ErrCircularReference   = errors.New("circular reference")
	ErrUnsupported         = errors.New("operation not supported")
	ErrFormat              = errors.New("format error")
	errUnexpectedVerdictOK = errors.New("verdict allows insertion")
)

// Verdict is the outcome of an insertion check.
type Verdict int

const (
	CanInsert Verdict = iota
	AlreadyMember
	NotSupported
	DuplicateName
	TopLevelNotAllowed
	CircularReference
)

func (v Verdict) String() string {
	switch v {
	case CanInsert:
		return "CanInsert"
	case AlreadyMember:
		return "AlreadyMember"
	case NotSupported:
		return "NotSupported"
	case DuplicateName:
		return "DuplicateName"
	case TopLevelNotAllowed:
		return "TopLevelNotAllowed"
	case CircularReference:
		return "CircularReference"
	default:
		return fmt.Sprintf("Verdict(%d)", int(v))
	}
}

// OK reports whether the verdict permits the mutation.
func (v Verdict) OK() bool {
	return v == CanInsert
}

// Err converts failed verdict into an error, nil for CanInsert.
func (v Verdict) Err() error {
	if v == CanInsert {
		return nil
	}
	return &VerdictError{Verdict: v}
}

// VerdictError is returned by mutators when the insertion validator refuses
// the change. It unwraps to the matching sentinel error.
type VerdictError struct {
	Verdict Verdict
}

func (e *VerdictError) Error() string {
	return "insertion refused: " + e.Unwrap().Error()
}

func (e *VerdictError) Unwrap() error {
	switch e.Verdict {
	case AlreadyMember:
		return ErrAlreadyMember
	case DuplicateName:
		return ErrDuplicateName
	case TopLevelNotAllowed:
		return ErrTopLevelNotAllowed
	case CircularReference:
		return ErrCircularReference
	case NotSupported:
		return ErrUnsupported
	default:
		return errUnexpectedVerdictOK
	}
}

// FormatError describes a line of LDraw code which could not be parsed.
type FormatError struct {
	Line   int // 1-based, 0 when parsing a standalone code fragment
	Code   string
	Reason string
}

func (e *FormatError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s: %q", e.Line, e.Reason, e.Code)
	}
	return fmt.Sprintf("%s: %q", e.Reason, e.Code)
}

func (e *FormatError) Unwrap() error {
	return ErrFormat
}

func formatErrorf(code, format string, args ...any) *FormatError {
	return &FormatError{Code: code, Reason: fmt.Sprintf(format, args...)}
}
