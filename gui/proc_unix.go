//go:build gui && !windows

package gui

import (
	"os"
	"syscall"
)

// interruptProcess asks the recording core to shut down cleanly, flushing
// any active session on its way out.
func interruptProcess(p *os.Process) {
	p.Signal(syscall.SIGINT)
}
