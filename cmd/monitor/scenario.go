package main

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/wippyai/console-monitor/monitor"
	"github.com/wippyai/console-monitor/resource"
)

// Banner is printed to the command output before the monitor is constructed.
const Banner = "ConsoleMonitor instance...."

var (
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Construct a monitor, write through it and Close it",
		Long:  WrapString("Runs the deterministic path: the monitor is constructed, writes one line, and is released by Close. The runtime cleanup is cancelled and never runs."),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(opts)
			err := closeScenario(cmd.OutOrStdout(), s, opts)
			return multierr.Combine(err, s.close(cmd.OutOrStdout()))
		},
	}

	forgetCmd = &cobra.Command{
		Use:   "forget",
		Short: "Construct a monitor and drop it without Close",
		Long:  WrapString("Runs the forgotten-Close path: the monitor is constructed, writes one line and becomes unreachable. Garbage collection is forced until the runtime cleanup closes the handle or --wait elapses. The component is never dropped on this path."),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := newSession(opts)
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.Wait)
			defer cancel()
			err := forgetScenario(ctx, s, opts)
			return multierr.Combine(err, s.close(cmd.OutOrStdout()))
		},
	}
)

// closeScenario prints the banner to out, then constructs, writes and
// closes one monitor.
func closeScenario(out io.Writer, s *session, o *options) error {
	if _, err := fmt.Fprintln(out, Banner); err != nil {
		return err
	}

	m, err := monitor.New(s.con, s.config(o))
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Write(); err != nil {
		return err
	}
	return m.Close()
}

// forgetScenario constructs and writes through a monitor, drops it and forces
// garbage collection until its handle is closed. A cleanup that does not run
// before ctx is done is logged, not returned.
func forgetScenario(ctx context.Context, s *session, o *options) error {
	closed, stop := s.watchDrops()
	defer stop()

	h, err := abandon(s, o)
	if err != nil {
		return err
	}

	if err := awaitCleanup(ctx, h, closed); err != nil {
		monitor.Logger().Warn("cleanup did not run", zap.Uint32("handle", uint32(h)), zap.Error(err))
	}
	return nil
}

// abandon returns only the handle so the monitor is unreachable once it
// returns.
//
//go:noinline
func abandon(s *session, o *options) (resource.Handle, error) {
	m, err := monitor.New(s.con, s.config(o))
	if err != nil {
		return resource.InvalidHandle, err
	}
	if err := m.Write(); err != nil {
		return resource.InvalidHandle, err
	}
	return m.Handle(), nil
}

func awaitCleanup(ctx context.Context, h resource.Handle, closed <-chan resource.Handle) error {
	tick := time.NewTicker(10 * time.Millisecond)
	defer tick.Stop()
	for {
		runtime.GC()
		select {
		case got := <-closed:
			if got == h {
				return nil
			}
		case <-tick.C:
		case <-ctx.Done():
			return fmt.Errorf("handle %d still open: %w", h, ctx.Err())
		}
	}
}

// dropNotifier sends every dropped handle to its channel without blocking.
type dropNotifier chan<- resource.Handle

func (n dropNotifier) OnResourceEvent(e resource.Event) {
	if e.Type != resource.EventDropped {
		return
	}
	select {
	case n <- e.Handle:
	default:
	}
}
