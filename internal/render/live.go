// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/jeranaias/specsmith-cli/internal/ui/styles"
)

// DefaultRefreshRate is how often an open Live region repaints.
const DefaultRefreshRate = 10

// thinkingText is shown next to the spinner until content arrives.
const thinkingText = "Thinking..."

// =============================================================================
// LIVE REGION
// =============================================================================

// Live is a region of the terminal repainted in place while a reply streams.
//
// Update only records the latest content; a background refresher repaints at
// most once per tick. The frame is bounded to the terminal height so that
// erasing it never has to reach into scrollback. Close leaves the complete
// final rendering in scrollback.
type Live struct {
	console  *Console
	renderer Renderer
	spin     spinner.Spinner
	started  time.Time

	mu       sync.Mutex
	content  string
	dirty    bool
	rendered string   // cache of renderer output for content
	frame    []string // lines currently painted
	rows     int      // visual rows currently painted
	closed   bool

	stop chan struct{}
	done chan struct{}
}

// LiveOption configures a Live region.
type LiveOption func(*liveOptions)

type liveOptions struct {
	rate  int
	ticks <-chan time.Time // replaces the ticker when set
}

// WithRefreshRate sets repaints per second.
func WithRefreshRate(perSecond int) LiveOption {
	return func(o *liveOptions) {
		if perSecond > 0 {
			o.rate = perSecond
		}
	}
}

// StartLive opens a Live region at the bottom of the console. Only one
// region may be open at a time; a previous one is closed first.
func (c *Console) StartLive(r Renderer, opts ...LiveOption) *Live {
	o := liveOptions{rate: DefaultRefreshRate}
	for _, opt := range opts {
		opt(&o)
	}
	if r == nil {
		r = PlainRenderer{}
	}

	c.mu.Lock()
	prev := c.live
	c.mu.Unlock()
	if prev != nil {
		prev.Close()
	}

	l := &Live{
		console:  c,
		renderer: r,
		spin:     spinner.Dot,
		started:  time.Now(),
		dirty:    true,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}

	c.mu.Lock()
	c.live = l
	c.mu.Unlock()

	if !c.interactive {
		close(l.done)
		return l
	}

	ticks := o.ticks
	var ticker *time.Ticker
	if ticks == nil {
		ticker = time.NewTicker(time.Second / time.Duration(o.rate))
		ticks = ticker.C
	}

	c.out.HideCursor()
	l.refresh()
	go l.run(ticks, ticker)
	return l
}

// Update replaces the region's content with markdown.
func (l *Live) Update(markdown string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || markdown == l.content {
		return
	}
	l.content = markdown
	l.dirty = true
}

// Println inserts a line above the region.
func (l *Live) Println(line string) {
	l.console.Println(line)
}

// Close stops repainting and leaves the final rendering in scrollback.
// Safe to call more than once.
func (l *Live) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	close(l.stop)
	<-l.done

	c := l.console
	c.mu.Lock()
	defer c.mu.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()

	if c.interactive {
		l.eraseLocked()
	}
	if l.content != "" {
		c.out.WriteString(l.renderLocked() + "\n")
	}
	if c.interactive {
		c.out.ShowCursor()
	}
	if c.live == l {
		c.live = nil
	}
	return nil
}

// =============================================================================
// PAINTING
// =============================================================================

func (l *Live) run(ticks <-chan time.Time, ticker *time.Ticker) {
	defer close(l.done)
	if ticker != nil {
		defer ticker.Stop()
	}

	for {
		select {
		case <-l.stop:
			return
		case <-ticks:
			l.refresh()
		}
	}
}

// refresh repaints the frame if anything changed since the last paint.
func (l *Live) refresh() {
	c := l.console
	c.mu.Lock()
	defer c.mu.Unlock()
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	// The spinner animates until content arrives.
	if !l.dirty && l.content != "" {
		return
	}
	l.eraseLocked()
	l.frame = l.frameLocked()
	l.dirty = false
	l.paintLocked()
}

// renderLocked returns the rendering of the current content, cached until
// the content changes.
func (l *Live) renderLocked() string {
	if l.dirty || l.rendered == "" {
		l.rendered = l.renderer.Render(l.content)
	}
	return l.rendered
}

// frameLocked builds the lines to paint.
func (l *Live) frameLocked() []string {
	if l.content == "" {
		frames := l.spin.Frames
		idx := int(time.Since(l.started)/l.spin.FPS) % len(frames)
		return []string{styles.TitleStyle.Render(frames[idx]) + " " + styles.DimStyle.Render(thinkingText)}
	}
	l.rendered = l.renderer.Render(l.content)
	width, height := l.console.size()
	return boundFrame(l.rendered, width, height-1)
}

// paintLocked draws the current frame at the cursor, which must be at the
// start of an empty line.
func (l *Live) paintLocked() {
	if len(l.frame) == 0 {
		l.rows = 0
		return
	}
	l.console.out.WriteString(strings.Join(l.frame, "\n") + "\n")
	width, _ := l.console.size()
	l.rows = countRows(l.frame, width)
}

// eraseLocked removes the painted frame, leaving the cursor where it began.
func (l *Live) eraseLocked() {
	if l.rows == 0 {
		return
	}
	l.console.out.ClearLines(l.rows)
	l.rows = 0
}

// =============================================================================
// GEOMETRY
// =============================================================================

// rowsFor returns how many terminal rows line occupies at width.
func rowsFor(line string, width int) int {
	w := lipgloss.Width(line)
	if width <= 0 || w <= width {
		return 1
	}
	return (w + width - 1) / width
}

func countRows(lines []string, width int) int {
	rows := 0
	for _, line := range lines {
		rows += rowsFor(line, width)
	}
	return rows
}

// boundFrame keeps the tail of rendered that fits in maxRows terminal rows.
// A last line taller than that on its own keeps only its final
// maxRows*width cells.
func boundFrame(rendered string, width, maxRows int) []string {
	lines := strings.Split(rendered, "\n")
	if maxRows < 1 {
		maxRows = 1
	}

	rows := 0
	start := len(lines)
	for start > 0 {
		r := rowsFor(lines[start-1], width)
		if rows+r > maxRows {
			break
		}
		rows += r
		start--
	}
	if start == len(lines) {
		last := lines[len(lines)-1]
		if excess := lipgloss.Width(last) - maxRows*width; width > 0 && excess > 0 {
			last = ansi.TruncateLeft(last, excess, "")
		}
		return []string{last}
	}
	return lines[start:]
}
