//go:build windows

package main

import (
	"context"
	"os"

	"golang.org/x/term"
)

// listenForKeyboard switches the console to raw input and reads keypresses.
// The returned func restores the console.
func listenForKeyboard(ctx context.Context, c *console) (restore func()) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}
	}

	go c.readKeys(ctx, os.Stdin.Read)
	return func() { term.Restore(fd, oldState) }
}
