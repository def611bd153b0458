// Package monitor implements a console monitor: an owner of one unmanaged
// console handle and one owned component, with a deterministic release path
// and a runtime cleanup fallback.
//
// # Lifecycle
//
//	m, err := monitor.New(console.NewSystem(), nil)
//	if err != nil {
//	    return err // errors.KindResourceUnavailable
//	}
//	defer m.Close()
//
//	m.Write()
//
// A Monitor has two states, Active and Released. Either release path moves it
// to Released exactly once; every later release is a no-op.
//
//	Close     deterministic. Drops the owned component, closes the handle,
//	          then stops the runtime cleanup so it never runs.
//	cleanup   registered with runtime.AddCleanup. Runs on the runtime's
//	          cleanup goroutine after the Monitor becomes unreachable without
//	          Close. Closes the handle only.
//
// # Why the cleanup never touches the component
//
// The cleanup runs at an arbitrary time after the Monitor is gone, and the
// component may already be unreachable and released on its own by then. The
// cleanup therefore receives only the inner handle state, which holds the
// handle and the console and nothing else. The component is reachable from
// the Monitor alone and is dropped only by Close.
//
// # Do not rely on the cleanup
//
// The runtime gives no guarantee about when, or whether, a cleanup runs; a
// program may exit with cleanups still pending. Always Close a Monitor,
// normally with defer. The cleanup exists so a forgotten Close does not leak
// the handle in a long-running process.
//
// # Diagnostics
//
// Every lifecycle step writes one fixed line through the handle (see the Msg
// constants). Lines about the component and about close failures go to the
// error stream (Config.Errors) instead, since they are not about the handle.
package monitor
