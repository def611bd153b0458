package console

import (
	"strings"

	"github.com/wippyai/console-monitor/errors"
	"github.com/wippyai/console-monitor/resource"
)

// Stream identifies one of the process's standard streams.
type Stream uint8

const (
	Stdin Stream = iota
	Stdout
	Stderr
)

func (s Stream) String() string {
	switch s {
	case Stdin:
		return "stdin"
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// ParseStream converts a stream name ("stdout", "stderr", "stdin") to a Stream.
func ParseStream(name string) (Stream, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "stdin":
		return Stdin, nil
	case "stdout", "":
		return Stdout, nil
	case "stderr":
		return Stderr, nil
	default:
		return 0, errors.InvalidInput(errors.PhaseConfig, "unknown stream "+name)
	}
}

// Type IDs of the values stored behind console handles.
const (
	typeStdFile uint32 = iota + 1
	typeMemoryStream
)

// Console hands out unmanaged handles to standard streams.
type Console interface {
	// Acquire returns a new handle for the stream, or resource.InvalidHandle
	// if the stream is not available.
	Acquire(s Stream) resource.Handle

	// Write writes p through the handle.
	Write(h resource.Handle, p []byte) (int, error)

	// CloseHandle releases the handle. Closing an unknown or already closed
	// handle returns an error.
	CloseHandle(h resource.Handle) error

	// IsTerminal reports whether the handle refers to a terminal.
	IsTerminal(h resource.Handle) bool
}
