//go:build gui

package main

import (
	"fmt"
	"os"

	"dictationer/config"
	"dictationer/gui"
)

func initGUI() {
	// The shell owns the window; the pipeline runs in a child process it
	// starts and stops, so only the config path crosses over.
	configPath := config.DefaultPath
	args := os.Args[1:]
	for i, arg := range args {
		if (arg == "-config" || arg == "--config") && i+1 < len(args) {
			configPath = args[i+1]
		}
	}
	if err := gui.Run(configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
