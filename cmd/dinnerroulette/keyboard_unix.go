//go:build linux || darwin

package main

import (
	"context"
	"os"

	"golang.org/x/sys/unix"
)

// listenForKeyboard puts the terminal in non-canonical mode so single
// keypresses arrive without Enter. The returned func restores it.
func listenForKeyboard(ctx context.Context, c *console) (restore func()) {
	fd := int(os.Stdin.Fd())
	oldState, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		// Not a terminal
		return func() {}
	}

	newState := *oldState
	// Keep OPOST so log lines still get carriage returns
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &newState); err != nil {
		return func() {}
	}

	go c.readKeys(ctx, os.Stdin.Read)
	return func() { unix.IoctlSetTermios(fd, ioctlSetTermios, oldState) }
}
