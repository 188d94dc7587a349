//go:build !gui

package main

func initGUI() {
	panic("dictationer: built without GUI support (rebuild with -tags gui)")
}
