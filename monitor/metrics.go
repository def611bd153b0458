package monitor

import (
	"io"

	"github.com/VictoriaMetrics/metrics"
)

var (
	createdTotal      = metrics.NewCounter(`console_monitor_created_total`)
	releasedExplicit  = metrics.NewCounter(`console_monitor_released_total{path="explicit"}`)
	releasedAutomatic = metrics.NewCounter(`console_monitor_released_total{path="automatic"}`)
	releaseFailures   = metrics.NewCounter(`console_monitor_release_failures_total`)
)

// Stats is a snapshot of the process-wide monitor counters.
type Stats struct {
	Created         uint64
	ReleasedClose   uint64
	ReleasedCleanup uint64
	ReleaseFailures uint64
}

// Active returns the number of monitors not yet released. It is zero when
// the snapshot shows more releases than creations.
func (s Stats) Active() uint64 {
	released := s.ReleasedClose + s.ReleasedCleanup
	if released >= s.Created {
		return 0
	}
	return s.Created - released
}

// ReadStats returns the current counter values. Releases are read before
// creations, so a snapshot never counts a release without its creation.
func ReadStats() Stats {
	var s Stats
	s.ReleaseFailures = releaseFailures.Get()
	s.ReleasedClose = releasedExplicit.Get()
	s.ReleasedCleanup = releasedAutomatic.Get()
	s.Created = createdTotal.Get()
	return s
}

// WriteMetrics writes the counters in Prometheus text format.
func WriteMetrics(w io.Writer) {
	metrics.WritePrometheus(w, false)
}
