//go:build gui && windows

package gui

import "os"

// Windows has no SIGINT delivery to another process; kill and rely on the
// core's stop path having already flushed completed sessions.
func interruptProcess(p *os.Process) {
	p.Kill()
}
