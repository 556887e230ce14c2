//go:build windows

package main

import (
	"os"

	"golang.org/x/sys/windows"
)

// Win10 cmd understands ANSI sequences once the console mode bit is
// flipped. On older Windows SetConsoleMode fails and we stay monochrome.
func init() {
	stdout := windows.Handle(os.Stdout.Fd())
	var mode uint32
	_ = windows.GetConsoleMode(stdout, &mode)
	if err := windows.SetConsoleMode(stdout, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err == nil {
		colorOK = true
	}
}
