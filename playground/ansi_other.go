//go:build !windows

package main

// ANSI just works everywhere else.
func init() { colorOK = true }
