//go:build unix

package console

import (
	"os"

	"golang.org/x/sys/unix"
)

// openStream returns a private duplicate of the stream's descriptor.
func openStream(s Stream) (*os.File, bool, error) {
	std, err := stdFileFor(s)
	if err != nil {
		return nil, false, err
	}

	fd, err := unix.Dup(int(std.Fd()))
	if err != nil {
		return nil, false, err
	}
	unix.CloseOnExec(fd)

	return os.NewFile(uintptr(fd), std.Name()), true, nil
}
