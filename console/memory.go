package console

import (
	"bytes"
	stderrors "errors"
	"io"
	"strings"
	"sync"

	"github.com/wippyai/console-monitor/errors"
	"github.com/wippyai/console-monitor/resource"
)

var (
	ErrInjectedWrite = stderrors.New("injected write failure")
	ErrInjectedClose = stderrors.New("injected close failure")
)

// Failures selects which Memory operations fail.
type Failures struct {
	Acquire bool
	Write   bool
	Close   bool
}

// Memory is a Console that records everything written through its handles
// into a single transcript.
type Memory struct {
	table      resource.Table
	closes     map[resource.Handle]int
	closed     chan resource.Handle
	transcript bytes.Buffer
	failures   Failures
	mu         sync.Mutex
	terminal   bool
}

var _ Console = (*Memory)(nil)

// NewMemory creates an empty in-memory console.
func NewMemory() *Memory {
	return &Memory{
		table:  resource.NewTable(),
		closes: make(map[resource.Handle]int),
		closed: make(chan resource.Handle, 16),
	}
}

// SetFailures sets which operations fail from now on.
func (m *Memory) SetFailures(f Failures) {
	m.mu.Lock()
	m.failures = f
	m.mu.Unlock()
}

// SetTerminal sets what IsTerminal reports for live handles.
func (m *Memory) SetTerminal(v bool) {
	m.mu.Lock()
	m.terminal = v
	m.mu.Unlock()
}

func (m *Memory) Acquire(s Stream) resource.Handle {
	m.mu.Lock()
	fail := m.failures.Acquire
	m.mu.Unlock()
	if fail {
		return resource.InvalidHandle
	}
	return m.table.Insert(typeMemoryStream, s)
}

func (m *Memory) Write(h resource.Handle, p []byte) (int, error) {
	if _, ok := m.table.GetTyped(h, typeMemoryStream); !ok {
		return 0, errors.InvalidHandle(errors.PhaseWrite, uint32(h))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures.Write {
		return 0, ErrInjectedWrite
	}
	return m.transcript.Write(p)
}

// CloseHandle removes the handle. With close failures injected the handle is
// still removed, matching an OS close that reports an error after releasing
// the descriptor.
func (m *Memory) CloseHandle(h resource.Handle) error {
	if _, ok := m.table.GetTyped(h, typeMemoryStream); !ok {
		return errors.InvalidHandle(errors.PhaseRelease, uint32(h))
	}
	if _, ok := m.table.Remove(h); !ok {
		return errors.InvalidHandle(errors.PhaseRelease, uint32(h))
	}

	m.mu.Lock()
	m.closes[h]++
	fail := m.failures.Close
	m.mu.Unlock()

	select {
	case m.closed <- h:
	default:
	}

	if fail {
		return ErrInjectedClose
	}
	return nil
}

func (m *Memory) IsTerminal(h resource.Handle) bool {
	if _, ok := m.table.GetTyped(h, typeMemoryStream); !ok {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.terminal
}

// ErrorWriter returns a writer appending to the same transcript, for output
// that bypasses the handles (the error stream).
func (m *Memory) ErrorWriter() io.Writer {
	return memoryWriter{m}
}

// Closed delivers each handle as it is closed. Sends never block; closes
// beyond the channel buffer are not delivered when nobody is receiving.
func (m *Memory) Closed() <-chan resource.Handle {
	return m.closed
}

// Output returns the transcript so far.
func (m *Memory) Output() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transcript.String()
}

// Lines returns the transcript split into lines, without the trailing empty line.
func (m *Memory) Lines() []string {
	out := strings.TrimSuffix(m.Output(), "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}

// Closes returns how many times h was closed successfully or not.
func (m *Memory) Closes(h resource.Handle) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closes[h]
}

// TotalCloses returns the number of CloseHandle calls that found a live handle.
func (m *Memory) TotalCloses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.closes {
		n += c
	}
	return n
}

// Open returns the number of handles not yet closed.
func (m *Memory) Open() int {
	return m.table.Len()
}

// Subscribe registers an observer for handle creation and closing.
func (m *Memory) Subscribe(o resource.Observer) {
	m.table.Subscribe(o)
}

// Unsubscribe removes an observer registered with Subscribe.
func (m *Memory) Unsubscribe(o resource.Observer) {
	m.table.Unsubscribe(o)
}

type memoryWriter struct {
	m *Memory
}

func (w memoryWriter) Write(p []byte) (int, error) {
	w.m.mu.Lock()
	defer w.m.mu.Unlock()
	return w.m.transcript.Write(p)
}
