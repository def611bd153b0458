package monitor

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/console-monitor/console"
	"github.com/wippyai/console-monitor/errors"
	"github.com/wippyai/console-monitor/resource"
)

// handleState is everything the runtime cleanup may touch. It must never
// reference the Monitor or the component.
type handleState struct {
	con      console.Console
	errOut   io.Writer
	log      *zap.Logger
	mu       sync.Mutex
	handle   resource.Handle
	stream   console.Stream
	released bool
}

func (s *handleState) isReleased() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// writeActive writes msg if the handle has not been released.
func (s *handleState) writeActive(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return errors.AlreadyReleased(errors.PhaseWrite, s.stream.String())
	}
	s.writeLine(msg)
	return nil
}

// writeLine writes one diagnostic line through the handle. Failures are logged.
// Caller holds s.mu.
func (s *handleState) writeLine(msg string) {
	if _, err := s.con.Write(s.handle, []byte(msg+"\n")); err != nil {
		s.log.Warn("diagnostic write failed",
			zap.String("line", msg),
			zap.Error(errors.WriteFailure(s.stream.String(), uint32(s.handle), err)))
	}
}

func (s *handleState) errorLine(msg string) {
	if _, err := fmt.Fprintln(s.errOut, msg); err != nil {
		s.log.Warn("error stream write failed", zap.String("line", msg), zap.Error(err))
	}
}

// release is the routine shared by Close and the runtime cleanup. The
// prologue lines are written only if the state is still active. It reports
// whether this call performed the release.
func (s *handleState) release(explicit bool, managed resource.Dropper, prologue ...string) (performed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.released {
		return false
	}
	performed = true

	defer func() {
		s.released = true
		if r := recover(); r != nil {
			phase := errors.PhaseRelease
			if !explicit {
				phase = errors.PhaseCleanup
			}
			s.log.Error("release panicked",
				zap.Bool("explicit", explicit),
				zap.Error(errors.Recovered(phase, r)))
		}
		if explicit {
			releasedExplicit.Inc()
		} else {
			releasedAutomatic.Inc()
		}
	}()

	for _, line := range prologue {
		s.writeLine(line)
	}

	// Only the explicit path may assume the component is still alive.
	if explicit {
		s.errorLine(MsgManaged)
		s.dropManaged(managed)
	}

	s.writeLine(MsgUnmanaged)
	if s.handle.Valid() {
		if err := s.con.CloseHandle(s.handle); err != nil {
			releaseFailures.Inc()
			s.log.Error("release handle",
				zap.Bool("explicit", explicit),
				zap.Error(errors.ReleaseFailure(s.stream.String(), uint32(s.handle), err)))
			s.errorLine(MsgHandleNotClosed)
		}
	}

	s.log.Debug("monitor released",
		zap.Bool("explicit", explicit),
		zap.Stringer("stream", s.stream),
		zap.Uint32("handle", uint32(s.handle)))
	return performed
}

// dropManaged drops the component. A panic in Drop is logged so the handle
// below is still closed.
func (s *handleState) dropManaged(managed resource.Dropper) {
	if managed == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("component drop panicked", zap.Error(errors.Recovered(errors.PhaseRelease, r)))
		}
	}()
	managed.Drop()
}

// finalize is the runtime cleanup. It runs on the runtime's cleanup goroutine
// and touches nothing but the handle.
func (s *handleState) finalize() {
	s.release(false, nil, MsgFinalizer)
}
