// Package errors provides structured error types for console-monitor.
//
// Errors are categorized by Phase (where in the resource lifecycle the error
// occurred) and Kind (error category). The Error type carries the stream name,
// the handle involved, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseRelease, errors.KindReleaseFailure).
//		Stream("stdout").
//		Handle(3).
//		Cause(closeErr).
//		Detail("close handle").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.ResourceUnavailable("stdout")
//	err := errors.AlreadyReleased(errors.PhaseWrite, "stdout")
//
// All errors implement the standard error interface and support errors.Is/As.
// A target with an empty Phase matches any phase, so callers can test for a
// kind alone:
//
//	if errors.IsKind(err, errors.KindResourceUnavailable) { ... }
package errors
