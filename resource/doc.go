// Package resource provides handle management for unmanaged host resources.
//
// A Handle is an opaque integer standing in for a host object the Go runtime
// does not manage on the caller's behalf: a duplicated file descriptor, a
// console stream, anything that must be closed explicitly. Handle 0 is
// reserved as InvalidHandle and is what acquisition returns on failure.
//
// # Handle Table
//
// The UnifiedTable maps handles to Go values:
//
//	table := resource.NewTable()
//
//	// Insert a value, get a handle
//	handle := table.Insert(typeID, file)
//
//	// Retrieve value by handle
//	value, ok := table.Get(handle)
//
//	// Remove and get value (caller closes it)
//	value, ok := table.Remove(handle)
//
// Handles are typed; GetTyped only returns a value stored under the same
// type ID.
//
// # Observers
//
// Register observers to track resource lifecycle events:
//
//	table.Subscribe(observer)
//
//	func (o *observer) OnResourceEvent(e resource.Event) {
//	    switch e.Type {
//	    case resource.EventCreated:
//	        log.Printf("resource %d created", e.Handle)
//	    case resource.EventDropped:
//	        log.Printf("resource %d dropped", e.Handle)
//	    }
//	}
//
// # Memory Management
//
// Values are not closed when their handle is removed; the owner that removed
// them decides how. Close on a table is the last-resort sweep: every value
// still present is dropped (Dropper) or closed (io.Closer) and the close
// errors are combined into one.
package resource
