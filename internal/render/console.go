// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	// DefaultWidth is used when the terminal size is unknown.
	DefaultWidth = 80
	// DefaultHeight is used when the terminal size is unknown.
	DefaultHeight = 24
)

// SizeFunc reports the terminal size in cells.
type SizeFunc func() (width, height int)

// =============================================================================
// CONSOLE
// =============================================================================

// Console owns the process's terminal output. While a Live region is open,
// every write is inserted above the region so the frame is never torn.
//
// Lock order: Console.mu before Live.mu.
type Console struct {
	mu          sync.Mutex
	out         *termenv.Output
	interactive bool
	size        SizeFunc
	live        *Live
}

// ConsoleOption configures a Console.
type ConsoleOption func(*Console)

// WithInteractive overrides TTY detection.
func WithInteractive(interactive bool) ConsoleOption {
	return func(c *Console) { c.interactive = interactive }
}

// WithSize overrides terminal size detection.
func WithSize(size SizeFunc) ConsoleOption {
	return func(c *Console) { c.size = size }
}

// NewConsole wraps w. When w is a terminal the console is interactive and
// its size tracks the terminal.
func NewConsole(w io.Writer, opts ...ConsoleOption) *Console {
	c := &Console{
		out:  termenv.NewOutput(w),
		size: fixedSize(DefaultWidth, DefaultHeight),
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		c.interactive = true
		c.size = fileSize(f)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func fixedSize(w, h int) SizeFunc {
	return func() (int, int) { return w, h }
}

func fileSize(f *os.File) SizeFunc {
	return func() (int, int) {
		w, h, err := term.GetSize(int(f.Fd()))
		if err != nil || w <= 0 || h <= 0 {
			return DefaultWidth, DefaultHeight
		}
		return w, h
	}
}

// Interactive reports whether in-place repainting is possible.
func (c *Console) Interactive() bool {
	return c.interactive
}

// Width returns the current terminal width.
func (c *Console) Width() int {
	w, _ := c.size()
	return w
}

// Write inserts p into scrollback. Safe for concurrent use; loggers may
// write here directly.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.live == nil || !c.interactive {
		return c.out.Write(p)
	}

	// Clear the frame, print above it, then put the frame back.
	c.live.mu.Lock()
	defer c.live.mu.Unlock()
	c.live.eraseLocked()
	n, err := c.out.Write(p)
	if err == nil && len(p) > 0 && p[len(p)-1] != '\n' {
		_, err = c.out.WriteString("\n")
	}
	c.live.paintLocked()
	return n, err
}

// Println writes its operands followed by a newline.
func (c *Console) Println(a ...any) {
	fmt.Fprintln(c, a...)
}

// Printf writes formatted text.
func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c, format, a...)
}

// Clear clears the screen when interactive.
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.interactive && c.live == nil {
		c.out.ClearScreen()
	}
}

// Output exposes the underlying termenv output for cursor control.
// Callers must not use it while a Live region is open.
func (c *Console) Output() *termenv.Output {
	return c.out
}
