package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/console-monitor/console"
	"github.com/wippyai/console-monitor/monitor"
	"github.com/wippyai/console-monitor/resource"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	lineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

func setLoggers(log *zap.Logger) {
	monitor.SetLogger(log)
	console.SetLogger(log)
}

// session is the console one command runs against. A dry run records into
// memory; otherwise the process's real streams are used.
type session struct {
	con    console.Console
	mem    *console.Memory
	sys    *console.System
	errOut io.Writer
}

type subscriber interface {
	Subscribe(resource.Observer)
	Unsubscribe(resource.Observer)
}

func newSession(o *options) *session {
	if o.DryRun {
		mem := console.NewMemory()
		return &session{con: mem, mem: mem, errOut: mem.ErrorWriter()}
	}
	sys := console.NewSystem()
	return &session{con: sys, sys: sys, errOut: os.Stderr}
}

// config returns the monitor config for this session.
func (s *session) config(o *options) *monitor.Config {
	return monitor.DefaultConfig().
		WithStream(o.Stream).
		WithErrors(s.errOut)
}

// watchDrops reports every handle the session's console closes until stop
// is called.
func (s *session) watchDrops() (closed <-chan resource.Handle, stop func()) {
	return watchDrops(s.con.(subscriber))
}

func watchDrops(sub subscriber) (<-chan resource.Handle, func()) {
	ch := make(chan resource.Handle, 1)
	n := dropNotifier(ch)
	sub.Subscribe(n)
	return ch, func() { sub.Unsubscribe(n) }
}

// close releases any handles still open. For a dry run it prints the
// transcript to out.
func (s *session) close(out io.Writer) error {
	var err error
	if s.sys != nil {
		err = multierr.Append(err, s.sys.Close())
	}
	if s.mem != nil {
		err = multierr.Append(err, printTranscript(out, s.mem.Lines()))
	}
	return err
}

func printTranscript(out io.Writer, lines []string) error {
	styled := out == os.Stdout && console.StreamIsTerminal(console.Stdout)

	header := "transcript"
	if styled {
		header = headerStyle.Render(header)
	}
	if _, err := fmt.Fprintln(out, header); err != nil {
		return err
	}
	for _, line := range lines {
		if styled {
			line = lineStyle.Render(line)
		}
		if _, err := fmt.Fprintln(out, "  "+line); err != nil {
			return err
		}
	}
	return nil
}
