package main

import (
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/console-monitor/console"
	"github.com/wippyai/console-monitor/monitor"
)

func TestInteractive_CloseSteps(t *testing.T) {
	m := newInteractiveModel(dryRun())

	for _, a := range []action{actionNew, actionWrite, actionClose} {
		if cmd := m.run(a); cmd != nil {
			t.Fatalf("action %d returned a command", a)
		}
		if m.err != nil {
			t.Fatalf("action %d: %v", a, m.err)
		}
	}

	want := []string{
		monitor.MsgConstructed,
		monitor.MsgWrite,
		monitor.MsgClose,
		monitor.ReleaseMessage(true),
		monitor.MsgManaged,
		monitor.MsgUnmanaged,
	}
	if got := m.con.Lines(); !slices.Equal(got, want) {
		t.Errorf("transcript\n got: %q\nwant: %q", got, want)
	}

	m.run(actionWrite)
	if m.err == nil {
		t.Error("write after close succeeded")
	}
}

func TestInteractive_NeedsMonitor(t *testing.T) {
	m := newInteractiveModel(dryRun())
	m.run(actionWrite)
	if m.err == nil {
		t.Fatal("expected error without a monitor")
	}
	view := m.View()
	if !strings.Contains(view, "no monitor") {
		t.Error("view does not show the missing monitor")
	}
	if !strings.Contains(view, "active ") {
		t.Error("view does not show the active count")
	}
}

func TestInteractive_Forget(t *testing.T) {
	m := newInteractiveModel(dryRun())
	m.run(actionNew)

	cmd := m.run(actionForget)
	if cmd == nil {
		t.Fatal("forget returned no command")
	}
	if m.mon != nil || !m.waiting {
		t.Fatal("monitor still held after forget")
	}

	msg, ok := cmd().(cleanupMsg)
	if !ok {
		t.Fatal("unexpected message type")
	}
	if msg.err != nil {
		t.Fatalf("cleanup: %v", msg.err)
	}
	m.Update(msg)
	if m.waiting {
		t.Error("still waiting after cleanupMsg")
	}

	want := []string{monitor.MsgConstructed, monitor.MsgFinalizer, monitor.MsgUnmanaged}
	if got := m.con.Lines(); !slices.Equal(got, want) {
		t.Errorf("transcript\n got: %q\nwant: %q", got, want)
	}
}

func TestInteractive_QuitStopsWatching(t *testing.T) {
	m := newInteractiveModel(dryRun())
	m.run(actionNew)
	h := m.mon.Handle()

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})

	if !m.mon.Released() {
		t.Fatal("quit left the monitor open")
	}
	m.drainClosed()
	if m.con.Closes(h) != 1 {
		t.Fatalf("handle closed %d times, want 1", m.con.Closes(h))
	}

	h = m.con.Acquire(console.Stdout)
	m.con.CloseHandle(h)
	select {
	case got := <-m.closed:
		t.Fatalf("drop of %d reported after quit", got)
	default:
	}
}

func TestInteractive_BadStream(t *testing.T) {
	m := newInteractiveModel(dryRun())
	m.stream.SetValue("printer")
	m.run(actionNew)
	if m.err == nil {
		t.Fatal("expected error for unknown stream")
	}
	if m.mon != nil {
		t.Error("monitor constructed for unknown stream")
	}
}
