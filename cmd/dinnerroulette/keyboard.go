package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/abrezinsky/dinnerroulette/internal/browser"
	"github.com/abrezinsky/dinnerroulette/internal/logger"
)

// console carries what the keyboard shortcuts act on
type console struct {
	appURL string
	log    *logger.SlogLogger
	backup func(ctx context.Context) (string, error)
	quit   context.CancelFunc
	open   func(url string) error
}

// handleKey runs the shortcut for key and reports whether the loop should stop
func (c *console) handleKey(ctx context.Context, key byte) bool {
	switch strings.ToLower(string(key)) {
	case "a":
		fmt.Printf("%sOpening %s in browser...%s\n", cyan, c.appURL, reset)
		open := c.open
		if open == nil {
			open = browser.Open
		}
		if err := open(c.appURL); err != nil {
			fmt.Printf("%sError opening browser: %v%s\n", red, err, reset)
		}
	case "b":
		path, err := c.backup(ctx)
		if err != nil {
			fmt.Printf("%sBackup failed: %v%s\n", red, err, reset)
		} else {
			fmt.Printf("%sBackup written to %s%s\n", green, path, reset)
		}
	case "h":
		if c.log.IsHTTPLoggingEnabled() {
			c.log.DisableHTTPLogging()
			fmt.Printf("%sHTTP logging disabled%s\n", yellow, reset)
		} else {
			c.log.EnableHTTPLogging()
			fmt.Printf("%sHTTP logging enabled%s\n", green, reset)
		}
	case "l":
		cycleLogLevel(c.log)
	case "q", "\x03": // Ctrl+C arrives as a byte in raw mode
		fmt.Printf("%sShutting down server...%s\n", yellow, reset)
		c.quit()
		return true
	case "?":
		printKeyboardHelp()
	}
	return false
}

// readKeys feeds single bytes from read to handleKey until quit or ctx ends
func (c *console) readKeys(ctx context.Context, read func([]byte) (int, error)) {
	buf := make([]byte, 1)
	for ctx.Err() == nil {
		n, err := read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		if c.handleKey(ctx, buf[0]) {
			return
		}
	}
}
