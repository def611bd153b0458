package errors

import (
	stderrors "errors"
	"fmt"
	"strconv"
	"strings"
)

// Phase indicates where in the resource lifecycle the error occurred
type Phase string

const (
	PhaseAcquire Phase = "acquire" // handle acquisition during construction
	PhaseWrite   Phase = "write"   // writes through a live handle
	PhaseRelease Phase = "release" // deterministic or automatic release
	PhaseCleanup Phase = "cleanup" // runtime cleanup goroutine
	PhaseConfig  Phase = "config"  // configuration and flags
)

// Kind categorizes the error
type Kind string

const (
	KindResourceUnavailable Kind = "resource_unavailable"
	KindAlreadyReleased     Kind = "already_released"
	KindReleaseFailure      Kind = "release_failure"
	KindWriteFailure        Kind = "write_failure"
	KindInvalidHandle       Kind = "invalid_handle"
	KindInvalidInput        Kind = "invalid_input"
	KindPanic               Kind = "panic"
)

// Error is the structured error type used throughout console-monitor
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Stream string
	Detail string
	Handle uint32
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Stream != "" {
		b.WriteString(" on ")
		b.WriteString(e.Stream)
	}
	if e.Handle != 0 {
		b.WriteString(" (handle ")
		b.WriteString(strconv.FormatUint(uint64(e.Handle), 10))
		b.WriteByte(')')
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error.
// A target with an empty Phase matches on Kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Phase != "" && t.Phase != e.Phase {
		return false
	}
	return e.Kind == t.Kind
}

// IsKind reports whether any error in err's chain is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return stderrors.Is(err, &Error{Kind: kind})
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Stream sets the console stream name
func (b *Builder) Stream(name string) *Builder {
	b.err.Stream = name
	return b
}

// Handle sets the handle involved
func (b *Builder) Handle(h uint32) *Builder {
	b.err.Handle = h
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// ResourceUnavailable creates the construction-time failure for a stream
// whose handle could not be acquired.
func ResourceUnavailable(stream string) *Error {
	return New(PhaseAcquire, KindResourceUnavailable).
		Stream(stream).
		Detail("a console handle is not available").
		Build()
}

// AlreadyReleased creates an error for an operation on a released owner
func AlreadyReleased(phase Phase, stream string) *Error {
	return New(phase, KindAlreadyReleased).
		Stream(stream).
		Detail("handle has already been released").
		Build()
}

// ReleaseFailure wraps an error reported by the underlying close operation
func ReleaseFailure(stream string, handle uint32, cause error) *Error {
	return New(PhaseRelease, KindReleaseFailure).
		Stream(stream).
		Handle(handle).
		Detail("handle cannot be closed").
		Cause(cause).
		Build()
}

// WriteFailure wraps an error reported by the underlying write operation
func WriteFailure(stream string, handle uint32, cause error) *Error {
	return New(PhaseWrite, KindWriteFailure).
		Stream(stream).
		Handle(handle).
		Cause(cause).
		Build()
}

// InvalidHandle creates an error for a handle unknown to a console
func InvalidHandle(phase Phase, handle uint32) *Error {
	return New(phase, KindInvalidHandle).
		Handle(handle).
		Value(handle).
		Detail("handle is not open").
		Build()
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return New(phase, KindInvalidInput).Detail("%s", detail).Build()
}

// Recovered converts a recovered panic value into an error
func Recovered(phase Phase, v any) *Error {
	b := New(phase, KindPanic).Value(v)
	if err, ok := v.(error); ok {
		return b.Detail("recovered panic").Cause(err).Build()
	}
	return b.Detail("recovered panic: %v", v).Build()
}
