//go:build !windows

package app

import (
	"os"
	"syscall"
)

func contSignals() []os.Signal {
	return []os.Signal{syscall.SIGCONT}
}

// activateSignals bring the panel to the front, e.g. `kill -USR1 <pid>` from
// an editor integration.
func activateSignals() []os.Signal {
	return []os.Signal{syscall.SIGUSR1}
}
