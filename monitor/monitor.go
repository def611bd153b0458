package monitor

import (
	"runtime"

	"go.uber.org/zap"

	"github.com/wippyai/console-monitor/console"
	"github.com/wippyai/console-monitor/errors"
	"github.com/wippyai/console-monitor/resource"
)

// Monitor owns one console handle and one component.
type Monitor struct {
	state      *handleState
	component  resource.Dropper
	cleanup    runtime.Cleanup
	registered bool
}

// New acquires a handle for cfg.Stream from con and creates the owned
// component. A nil cfg means DefaultConfig(). If the handle cannot be
// acquired New returns a KindResourceUnavailable error and nothing else
// happens.
func New(con console.Console, cfg *Config) (*Monitor, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if con == nil {
		return nil, errors.InvalidInput(errors.PhaseAcquire, "nil console")
	}
	log := cfg.logger()

	h := con.Acquire(cfg.Stream)
	if !h.Valid() {
		err := errors.ResourceUnavailable(cfg.Stream.String())
		log.Debug("monitor not constructed", zap.Error(err))
		return nil, err
	}

	state := &handleState{
		con:    con,
		errOut: cfg.errors(),
		log:    log,
		handle: h,
		stream: cfg.Stream,
	}
	m := &Monitor{
		state:     state,
		component: cfg.component(),
	}

	state.mu.Lock()
	state.writeLine(MsgConstructed)
	state.mu.Unlock()

	if !cfg.DisableCleanup {
		m.cleanup = runtime.AddCleanup(m, (*handleState).finalize, state)
		m.registered = true
	}

	createdTotal.Inc()
	log.Debug("monitor constructed",
		zap.Stringer("stream", cfg.Stream),
		zap.Uint32("handle", uint32(h)),
		zap.Bool("terminal", con.IsTerminal(h)),
		zap.Bool("cleanup", m.registered))

	return m, nil
}

// Write writes the write diagnostic line. It returns a KindAlreadyReleased
// error after the monitor has been released. A failure of the underlying
// write is logged and not returned.
func (m *Monitor) Write() error {
	err := m.state.writeActive(MsgWrite)
	// m must stay reachable until the write is done, or the cleanup could
	// close the handle underneath it.
	runtime.KeepAlive(m)
	return err
}

// Close releases the component and the handle and cancels the runtime
// cleanup. Calling Close again does nothing. Release failures are logged,
// never returned.
func (m *Monitor) Close() error {
	m.state.release(true, m.component, MsgClose, ReleaseMessage(true))
	if m.registered {
		m.cleanup.Stop()
	}
	return nil
}

// Released reports whether either release path has run.
func (m *Monitor) Released() bool {
	return m.state.isReleased()
}

// Handle returns the console handle, or resource.InvalidHandle once released.
func (m *Monitor) Handle() resource.Handle {
	if m.state.isReleased() {
		return resource.InvalidHandle
	}
	return m.state.handle
}

// Stream returns the console stream the monitor writes to.
func (m *Monitor) Stream() console.Stream {
	return m.state.stream
}

// IsTerminal reports whether the live handle refers to a terminal.
func (m *Monitor) IsTerminal() bool {
	h := m.Handle()
	if !h.Valid() {
		return false
	}
	ok := m.state.con.IsTerminal(h)
	runtime.KeepAlive(m)
	return ok
}
