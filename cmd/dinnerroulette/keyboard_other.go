//go:build !linux && !darwin && !windows

package main

import "context"

// listenForKeyboard is unavailable on this platform
func listenForKeyboard(context.Context, *console) (restore func()) {
	return func() {}
}
