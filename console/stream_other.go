//go:build !unix

package console

import (
	"os"
)

// openStream shares the process's own stream; the handle never closes it.
func openStream(s Stream) (*os.File, bool, error) {
	std, err := stdFileFor(s)
	if err != nil {
		return nil, false, err
	}
	return std, false, nil
}
