package monitor

import (
	"slices"
	"sync"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/console-monitor/console"
	"github.com/wippyai/console-monitor/errors"
	"github.com/wippyai/console-monitor/resource"
)

func newTestMonitor(t *testing.T, con *console.Memory, comp resource.Dropper) *Monitor {
	t.Helper()
	cfg := DefaultConfig().
		WithErrors(con.ErrorWriter()).
		WithComponent(func() resource.Dropper { return comp })
	m, err := New(con, cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func assertLines(t *testing.T, con *console.Memory, want ...string) {
	t.Helper()
	got := con.Lines()
	if !slices.Equal(got, want) {
		t.Fatalf("transcript mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestMonitor_CloseScenario(t *testing.T) {
	con := console.NewMemory()
	comp := NewComponent()
	m := newTestMonitor(t, con, comp)

	if err := m.Write(); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	assertLines(t, con,
		MsgConstructed,
		MsgWrite,
		MsgClose,
		ReleaseMessage(true),
		MsgManaged,
		MsgUnmanaged,
	)
	if !comp.Dropped() {
		t.Error("component not dropped by Close")
	}
	if con.Open() != 0 {
		t.Errorf("open handles = %d, want 0", con.Open())
	}

	// The cleanup after Close must not write anything.
	before := ReadStats()
	m.state.finalize()
	assertLines(t, con,
		MsgConstructed,
		MsgWrite,
		MsgClose,
		ReleaseMessage(true),
		MsgManaged,
		MsgUnmanaged,
	)
	if after := ReadStats(); after.ReleasedCleanup != before.ReleasedCleanup {
		t.Errorf("cleanup after Close counted as a release")
	}
}

func TestMonitor_CloseIsIdempotent(t *testing.T) {
	con := console.NewMemory()
	comp := NewComponent()
	m := newTestMonitor(t, con, comp)
	h := m.Handle()

	before := ReadStats()
	for i := 0; i < 3; i++ {
		if err := m.Close(); err != nil {
			t.Fatalf("Close #%d: %v", i+1, err)
		}
	}

	if n := con.Closes(h); n != 1 {
		t.Errorf("handle closed %d times, want 1", n)
	}
	if n := comp.Drops(); n != 1 {
		t.Errorf("component dropped %d times, want 1", n)
	}
	if n := len(con.Lines()); n != 5 {
		t.Errorf("transcript has %d lines, want 5", n)
	}
	if d := ReadStats().ReleasedClose - before.ReleasedClose; d != 1 {
		t.Errorf("explicit releases counted %d, want 1", d)
	}
}

func TestMonitor_ConcurrentClose(t *testing.T) {
	con := console.NewMemory()
	comp := NewComponent()
	m := newTestMonitor(t, con, comp)
	h := m.Handle()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Close()
		}()
	}
	wg.Wait()

	if n := con.Closes(h); n != 1 {
		t.Errorf("handle closed %d times, want 1", n)
	}
	if n := comp.Drops(); n != 1 {
		t.Errorf("component dropped %d times, want 1", n)
	}
}

func TestMonitor_ReleasedStaysTrue(t *testing.T) {
	con := console.NewMemory()
	m := newTestMonitor(t, con, NewComponent())

	if m.Released() {
		t.Fatal("new monitor reports released")
	}
	m.Close()
	for i := 0; i < 3; i++ {
		if !m.Released() {
			t.Fatal("Released went back to false")
		}
		m.Close()
		m.state.finalize()
	}
	if m.Handle().Valid() {
		t.Error("Handle is valid after release")
	}
}

func TestMonitor_ResourceUnavailable(t *testing.T) {
	con := console.NewMemory()
	con.SetFailures(console.Failures{Acquire: true})

	made := 0
	cfg := DefaultConfig().
		WithErrors(con.ErrorWriter()).
		WithComponent(func() resource.Dropper {
			made++
			return NewComponent()
		})

	before := ReadStats()
	m, err := New(con, cfg)
	if err == nil {
		t.Fatal("expected error")
	}
	if m != nil {
		t.Error("monitor returned with error")
	}
	if !errors.IsKind(err, errors.KindResourceUnavailable) {
		t.Errorf("error kind: %v", err)
	}
	if out := con.Output(); out != "" {
		t.Errorf("unexpected output %q", out)
	}
	if made != 0 {
		t.Errorf("component created %d times", made)
	}
	if con.Open() != 0 {
		t.Errorf("open handles = %d", con.Open())
	}
	if ReadStats().Created != before.Created {
		t.Error("failed construction counted as created")
	}
}

func TestMonitor_NilInputs(t *testing.T) {
	if _, err := New(nil, nil); !errors.IsKind(err, errors.KindInvalidInput) {
		t.Errorf("nil console: %v", err)
	}

	con := console.NewMemory()
	m, err := New(con, nil)
	if err != nil {
		t.Fatalf("nil config: %v", err)
	}
	defer m.Close()
	if m.Stream() != console.Stdout {
		t.Errorf("default stream = %v", m.Stream())
	}
}

func TestMonitor_WriteAfterClose(t *testing.T) {
	con := console.NewMemory()
	m := newTestMonitor(t, con, NewComponent())
	m.Close()
	lines := len(con.Lines())

	err := m.Write()
	if !errors.IsKind(err, errors.KindAlreadyReleased) {
		t.Fatalf("Write after Close: %v", err)
	}
	if n := len(con.Lines()); n != lines {
		t.Errorf("Write after Close wrote %d lines", n-lines)
	}
}

func TestMonitor_CloseFailure(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	con := console.NewMemory()
	comp := NewComponent()
	m, err := New(con, DefaultConfig().
		WithLogger(zap.New(core)).
		WithErrors(con.ErrorWriter()).
		WithComponent(func() resource.Dropper { return comp }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := m.Handle()

	con.SetFailures(console.Failures{Close: true})
	before := ReadStats()
	if err := m.Close(); err != nil {
		t.Fatalf("Close returned %v", err)
	}

	if !m.Released() {
		t.Error("monitor not released after close failure")
	}
	if d := ReadStats().ReleaseFailures - before.ReleaseFailures; d != 1 {
		t.Errorf("release failures counted %d, want 1", d)
	}
	lines := con.Lines()
	if lines[len(lines)-1] != MsgHandleNotClosed {
		t.Errorf("last line = %q", lines[len(lines)-1])
	}

	entries := logs.FilterMessage("release handle").All()
	if len(entries) != 1 {
		t.Fatalf("release handle logged %d times", len(entries))
	}
	if entries[0].Level != zapcore.ErrorLevel {
		t.Errorf("level = %v", entries[0].Level)
	}
	var logged error
	for _, f := range entries[0].Context {
		if f.Key == "error" {
			logged, _ = f.Interface.(error)
		}
	}
	if !errors.IsKind(logged, errors.KindReleaseFailure) {
		t.Errorf("logged error = %v", logged)
	}

	// Never retried.
	m.Close()
	if n := con.Closes(h); n != 1 {
		t.Errorf("close attempted %d times, want 1", n)
	}
}

func TestMonitor_WriteFailureLogged(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	con := console.NewMemory()
	m, err := New(con, DefaultConfig().
		WithLogger(zap.New(core)).
		WithErrors(con.ErrorWriter()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer m.Close()

	con.SetFailures(console.Failures{Write: true})
	if err := m.Write(); err != nil {
		t.Fatalf("Write returned %v", err)
	}
	con.SetFailures(console.Failures{})

	if n := logs.FilterMessage("diagnostic write failed").Len(); n != 1 {
		t.Errorf("write failure logged %d times, want 1", n)
	}
	assertLines(t, con, MsgConstructed)
}

type panicDropper struct{}

func (panicDropper) Drop() { panic("drop failed") }

func TestMonitor_ComponentPanic(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	con := console.NewMemory()
	m, err := New(con, DefaultConfig().
		WithLogger(zap.New(core)).
		WithErrors(con.ErrorWriter()).
		WithComponent(func() resource.Dropper { return panicDropper{} }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h := m.Handle()

	m.Close()

	if !m.Released() {
		t.Error("monitor not released")
	}
	if n := con.Closes(h); n != 1 {
		t.Errorf("handle closed %d times, want 1", n)
	}
	if n := logs.FilterMessage("component drop panicked").Len(); n != 1 {
		t.Errorf("panic logged %d times", n)
	}
}

func TestMonitor_NoComponent(t *testing.T) {
	con := console.NewMemory()
	m, err := New(con, DefaultConfig().
		WithErrors(con.ErrorWriter()).
		WithComponent(func() resource.Dropper { return nil }))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	m.Close()

	assertLines(t, con,
		MsgConstructed,
		MsgClose,
		ReleaseMessage(true),
		MsgManaged,
		MsgUnmanaged,
	)
}

func TestMonitor_FinalizeActive(t *testing.T) {
	con := console.NewMemory()
	comp := NewComponent()
	m := newTestMonitor(t, con, comp)
	h := m.Handle()

	m.state.finalize()

	assertLines(t, con, MsgConstructed, MsgFinalizer, MsgUnmanaged)
	if comp.Drops() != 0 {
		t.Error("cleanup dropped the component")
	}
	if n := con.Closes(h); n != 1 {
		t.Errorf("handle closed %d times, want 1", n)
	}
	if !m.Released() {
		t.Error("monitor not released")
	}

	// Close after the cleanup does nothing, not even drop the component.
	m.Close()
	if comp.Drops() != 0 {
		t.Error("Close after cleanup dropped the component")
	}
	assertLines(t, con, MsgConstructed, MsgFinalizer, MsgUnmanaged)
}

func TestMonitor_Accessors(t *testing.T) {
	con := console.NewMemory()
	con.SetTerminal(true)
	m, err := New(con, DefaultConfig().WithStream(console.Stderr).WithErrors(con.ErrorWriter()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if m.Stream() != console.Stderr {
		t.Errorf("Stream = %v", m.Stream())
	}
	if !m.Handle().Valid() {
		t.Error("Handle invalid while active")
	}
	if !m.IsTerminal() {
		t.Error("IsTerminal = false")
	}

	m.Close()
	if m.IsTerminal() {
		t.Error("IsTerminal after Close")
	}
}

// panicConsole panics when a handle is closed.
type panicConsole struct {
	*console.Memory
}

func (panicConsole) CloseHandle(resource.Handle) error {
	panic("close exploded")
}

func TestMonitor_ReleasePanicPhase(t *testing.T) {
	tests := []struct {
		name    string
		release func(*Monitor)
		phase   errors.Phase
	}{
		{"close", func(m *Monitor) { m.Close() }, errors.PhaseRelease},
		{"cleanup", func(m *Monitor) { m.state.finalize() }, errors.PhaseCleanup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.ErrorLevel)
			mem := console.NewMemory()
			m, err := New(panicConsole{mem}, DefaultConfig().
				WithLogger(zap.New(core)).
				WithErrors(mem.ErrorWriter()).
				WithoutCleanup())
			if err != nil {
				t.Fatalf("New: %v", err)
			}

			tt.release(m)

			if !m.Released() {
				t.Fatal("monitor not released after panic")
			}
			entries := logs.FilterMessage("release panicked").All()
			if len(entries) != 1 {
				t.Fatalf("panic logged %d times, want 1", len(entries))
			}
			var logged *errors.Error
			for _, f := range entries[0].Context {
				if f.Key == "error" {
					logged, _ = f.Interface.(*errors.Error)
				}
			}
			if logged == nil || logged.Phase != tt.phase || logged.Kind != errors.KindPanic {
				t.Errorf("logged error = %v, want phase %s", logged, tt.phase)
			}
		})
	}
}
