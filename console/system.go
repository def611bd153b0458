package console

import (
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/console-monitor/errors"
	"github.com/wippyai/console-monitor/resource"
)

// stdFile is the value stored behind a System handle.
type stdFile struct {
	file   *os.File
	stream Stream
	owned  bool // file is a private duplicate and must be closed
}

func (f *stdFile) Close() error {
	if !f.owned {
		return nil
	}
	return f.file.Close()
}

// System is a Console backed by the process's real standard streams.
type System struct {
	table resource.Table
}

var _ Console = (*System)(nil)

// NewSystem creates a console over the process stdio.
func NewSystem() *System {
	return &System{table: resource.NewTable()}
}

// Acquire duplicates the stream's descriptor and returns a handle for it.
func (c *System) Acquire(s Stream) resource.Handle {
	f, owned, err := openStream(s)
	if err != nil {
		Logger().Debug("acquire stream failed", zap.Stringer("stream", s), zap.Error(err))
		return resource.InvalidHandle
	}

	sf := &stdFile{file: f, stream: s, owned: owned}
	h := c.table.Insert(typeStdFile, sf)
	if !h.Valid() {
		_ = sf.Close()
		return resource.InvalidHandle
	}

	Logger().Debug("stream acquired", zap.Stringer("stream", s), zap.Uint32("handle", uint32(h)))
	return h
}

func (c *System) Write(h resource.Handle, p []byte) (int, error) {
	sf, ok := c.get(h)
	if !ok {
		return 0, errors.InvalidHandle(errors.PhaseWrite, uint32(h))
	}
	return sf.file.Write(p)
}

func (c *System) CloseHandle(h resource.Handle) error {
	sf, ok := c.get(h)
	if !ok {
		return errors.InvalidHandle(errors.PhaseRelease, uint32(h))
	}
	c.table.Remove(h)
	Logger().Debug("stream closed", zap.Stringer("stream", sf.stream), zap.Uint32("handle", uint32(h)))
	return sf.Close()
}

func (c *System) IsTerminal(h resource.Handle) bool {
	sf, ok := c.get(h)
	if !ok {
		return false
	}
	return isTerminal(sf.stream, int(sf.file.Fd()))
}

// Open returns the number of handles not yet closed.
func (c *System) Open() int {
	return c.table.Len()
}

// Subscribe registers an observer for handle creation and closing.
func (c *System) Subscribe(o resource.Observer) {
	c.table.Subscribe(o)
}

// Unsubscribe removes an observer registered with Subscribe.
func (c *System) Unsubscribe(o resource.Observer) {
	c.table.Unsubscribe(o)
}

// Close closes every handle still open and stops handing out new ones.
func (c *System) Close() error {
	return c.table.Close()
}

func (c *System) get(h resource.Handle) (*stdFile, bool) {
	v, ok := c.table.GetTyped(h, typeStdFile)
	if !ok {
		return nil, false
	}
	sf, ok := v.(*stdFile)
	return sf, ok
}

func stdFileFor(s Stream) (*os.File, error) {
	switch s {
	case Stdin:
		return os.Stdin, nil
	case Stdout:
		return os.Stdout, nil
	case Stderr:
		return os.Stderr, nil
	default:
		return nil, errors.InvalidInput(errors.PhaseAcquire, "unknown stream "+s.String())
	}
}
