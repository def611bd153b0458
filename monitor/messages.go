package monitor

import "fmt"

// Diagnostic lines, written newline-terminated.
const (
	MsgConstructed     = "The Monitor constructor."
	MsgWrite           = "The Write method."
	MsgClose           = "The Close method."
	MsgManaged         = "Releasing managed resources."
	MsgUnmanaged       = "Releasing unmanaged resources."
	MsgFinalizer       = "The Monitor cleanup."
	MsgHandleNotClosed = "Handle cannot be closed."
)

// ReleaseMessage is the line written when the shared release routine is
// entered from Close.
func ReleaseMessage(explicit bool) string {
	return fmt.Sprintf("The release(%t) method.", explicit)
}
