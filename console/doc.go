// Package console hands out unmanaged handles to the process's standard
// streams.
//
// A Console behaves like the handle API of an operating system console:
//
//	h := con.Acquire(console.Stdout)   // resource.InvalidHandle on failure
//	con.Write(h, []byte("hello\n"))
//	con.CloseHandle(h)
//
// Nothing closes a handle on the caller's behalf. Every handle returned by
// Acquire must be passed to CloseHandle exactly once; a second CloseHandle
// reports an invalid-handle error.
//
// Two implementations are provided:
//
//	System  duplicates the real stdio descriptors (closing a handle never
//	        closes the process's own stdout)
//	Memory  records a transcript in memory, counts closes and can inject
//	        acquire, write and close failures; used by tests and dry runs
package console
