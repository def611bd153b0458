// Package consolemonitor demonstrates deterministic release versus runtime
// cleanup for an object that owns an unmanaged console handle and a second
// releasable component.
//
// # Architecture Overview
//
//	consolemonitor/      Root package, documentation only
//	├── monitor/         Monitor (the owner), Component, release protocol
//	├── console/         Console handle providers: System and Memory
//	├── resource/        Handle table with lifecycle observers
//	├── errors/          Structured errors with phase and kind
//	├── cmd/monitor/     console-monitor CLI
//	└── examples/basic/  Minimal library usage
//
// # Quick Start
//
//	con := console.NewSystem()
//	defer con.Close()
//
//	m, err := monitor.New(con, monitor.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	defer m.Close()
//
//	m.Write()
//
// # Release Paths
//
// Close drops the component, closes the handle and cancels the runtime
// cleanup. If a Monitor becomes unreachable without Close, the cleanup
// registered with runtime.AddCleanup closes the handle only. Both paths share
// one idempotent release routine, so the handle is closed at most once.
//
// # Logging
//
// The console and monitor packages log through go.uber.org/zap. Both default
// to a no-op logger; install one with SetLogger or per monitor with
// monitor.Config.Logger.
package consolemonitor
