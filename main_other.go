//go:build !linux

package main

import (
	"os"
	"runtime"

	"golang.design/x/hotkey/mainthread"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// Check for -gui before pflag parses in run()
	for _, arg := range os.Args[1:] {
		if arg == "-gui" || arg == "--gui" {
			initGUI()
			return
		}
	}
	// The hotkey hook needs the main OS thread on macOS and Windows
	mainthread.Init(run)
}
