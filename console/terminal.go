package console

import (
	"sync/atomic"

	"golang.org/x/term"
)

// -1 = unchecked, 0 = no, 1 = yes
var terminalCache = [3]int32{-1, -1, -1}

func isTerminal(s Stream, fd int) bool {
	if int(s) >= len(terminalCache) {
		return term.IsTerminal(fd)
	}
	cached := &terminalCache[s]
	if v := atomic.LoadInt32(cached); v >= 0 {
		return v == 1
	}
	result := term.IsTerminal(fd)
	if result {
		atomic.StoreInt32(cached, 1)
	} else {
		atomic.StoreInt32(cached, 0)
	}
	return result
}

// StreamIsTerminal reports whether the process's own stream is a terminal.
func StreamIsTerminal(s Stream) bool {
	std, err := stdFileFor(s)
	if err != nil {
		return false
	}
	return isTerminal(s, int(std.Fd()))
}
