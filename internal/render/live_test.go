// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// syncBuffer is a bytes.Buffer safe for the refresher goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// withTicks drives the refresher from ticks instead of a ticker.
func withTicks(ticks <-chan time.Time) LiveOption {
	return func(o *liveOptions) { o.ticks = ticks }
}

// upperRenderer makes rendered output distinguishable from raw content.
type upperRenderer struct{}

func (upperRenderer) Render(md string) string { return strings.ToUpper(md) }

func TestBoundFrame(t *testing.T) {
	rendered := "one\ntwo\nthree\nfour\nfive"

	assert.Equal(t, []string{"four", "five"}, boundFrame(rendered, 80, 2))
	assert.Equal(t, strings.Split(rendered, "\n"), boundFrame(rendered, 80, 10))

	// A wrapped line counts as several rows.
	long := strings.Repeat("x", 25)
	assert.Equal(t, []string{long}, boundFrame("a\n"+long, 10, 3))
	assert.Equal(t, []string{"a", long}, boundFrame("a\n"+long, 10, 4))

	// A last line taller than the screen keeps only its tail.
	assert.Equal(t, []string{"xxxxxxxxxx"}, boundFrame(long, 10, 1))
	assert.Equal(t, []string{strings.Repeat("x", 20)}, boundFrame("a\n"+long, 10, 2))
}

func TestBoundFrame_OversizedCodeLine(t *testing.T) {
	payload := strings.Repeat("QUJD", 800)
	md, err := NewMarkdownRenderer(40)
	require.NoError(t, err)
	rendered := md.Render("```json\n{\"data\":\"" + payload + "\"}\n```")

	frame := boundFrame(rendered, 40, 9)
	require.NotEmpty(t, frame)
	assert.LessOrEqual(t, countRows(frame, 40), 9)
}

func TestBoundFrame_KeepsEscapeCodes(t *testing.T) {
	line := "\x1b[1m" + strings.Repeat("y", 30) + "\x1b[0m"
	frame := boundFrame(line, 10, 2)
	require.Len(t, frame, 1)
	assert.Equal(t, 20, lipgloss.Width(frame[0]))
	assert.LessOrEqual(t, countRows(frame, 10), 2)
}

func TestRowsFor(t *testing.T) {
	assert.Equal(t, 1, rowsFor("", 10))
	assert.Equal(t, 1, rowsFor("0123456789", 10))
	assert.Equal(t, 2, rowsFor("0123456789a", 10))
	assert.Equal(t, 2, rowsFor("\x1b[1m0123456789ab\x1b[0m", 10), "escape codes have no width")
	assert.Equal(t, 2, rowsFor("日本語日本語", 10), "wide runes count double")
}

func TestLive_NonInteractivePrintsOnClose(t *testing.T) {
	var out syncBuffer
	console := NewConsole(&out, WithInteractive(false))

	live := console.StartLive(upperRenderer{})
	live.Update("hello")
	live.Update("hello world")
	assert.Empty(t, out.String(), "nothing is painted before close")

	live.Println("tool line")
	assert.Equal(t, "tool line\n", out.String(), "inserted lines print immediately")

	require.NoError(t, live.Close())
	assert.Equal(t, "tool line\nHELLO WORLD\n", out.String())

	// Close is idempotent and the console is free again.
	require.NoError(t, live.Close())
	console.Println("after")
	assert.Equal(t, "tool line\nHELLO WORLD\nafter\n", out.String())
}

func TestLive_NonInteractiveEmptyPrintsNothing(t *testing.T) {
	var out syncBuffer
	console := NewConsole(&out, WithInteractive(false))
	require.NoError(t, console.StartLive(nil).Close())
	assert.Empty(t, out.String())
}

func TestLive_InteractiveRepaint(t *testing.T) {
	var out syncBuffer
	console := NewConsole(&out, WithInteractive(true), WithSize(fixedSize(40, 10)))

	// A very slow rate keeps the background refresher out of the way.
	live := console.StartLive(upperRenderer{}, WithRefreshRate(1))
	defer live.Close()

	assert.Contains(t, out.String(), thinkingText, "spinner before content")

	live.Update("first")
	live.refresh()
	assert.Contains(t, out.String(), "FIRST\n")

	before := out.String()
	live.refresh()
	assert.Equal(t, before, out.String(), "no repaint without changes")

	live.Println("notice")
	after := out.String()[len(before):]
	// The frame is erased, the notice printed, then the frame restored.
	eraseAt := strings.Index(after, "\x1b[2K")
	noticeAt := strings.Index(after, "notice\n")
	frameAt := strings.LastIndex(after, "FIRST\n")
	require.True(t, eraseAt >= 0 && noticeAt >= 0 && frameAt >= 0, "output: %q", after)
	assert.Less(t, eraseAt, noticeAt)
	assert.Less(t, noticeAt, frameAt)
}

func TestLive_RepaintsAtMostOncePerTick(t *testing.T) {
	var out syncBuffer
	console := NewConsole(&out, WithInteractive(true), WithSize(fixedSize(40, 10)))

	ticks := make(chan time.Time)
	live := console.StartLive(PlainRenderer{}, withTicks(ticks))
	defer live.Close()

	start := out.String()
	require.Contains(t, start, thinkingText)

	for i := 0; i < 1000; i++ {
		live.Update(fmt.Sprintf("burst-%d", i))
	}
	assert.Equal(t, start, out.String(), "updates never paint between ticks")

	// The second send only returns once the first refresh has finished.
	ticks <- time.Now()
	ticks <- time.Now()

	painted := out.String()[len(start):]
	assert.Equal(t, 1, strings.Count(painted, "burst-"), "output: %q", painted)
	assert.Contains(t, painted, "burst-999\n")
	// One erase of the single spinner row.
	assert.Equal(t, 1, strings.Count(painted, "\x1b[1A"), "output: %q", painted)

	live.Update("burst-final")
	ticks <- time.Now()
	ticks <- time.Now()
	assert.Equal(t, 2, strings.Count(out.String()[len(start):], "burst-"))
}

func TestLive_InteractiveCloseLeavesFullRendering(t *testing.T) {
	var out syncBuffer
	console := NewConsole(&out, WithInteractive(true), WithSize(fixedSize(40, 4)))

	live := console.StartLive(PlainRenderer{}, WithRefreshRate(1))
	content := "l1\nl2\nl3\nl4\nl5\nl6"
	live.Update(content)
	live.refresh()

	// Only the tail fits the 4-row terminal while streaming.
	assert.NotContains(t, out.String(), "l1\n")
	assert.Contains(t, out.String(), "l4\nl5\nl6\n")

	require.NoError(t, live.Close())
	assert.True(t, strings.HasSuffix(out.String(), content+"\n"+"\x1b[?25h"), "output: %q", out.String())
}

func TestConsole_WriteWithoutLive(t *testing.T) {
	var out syncBuffer
	console := NewConsole(&out, WithInteractive(true))
	console.Printf("%s=%d\n", "a", 1)
	assert.Equal(t, "a=1\n", out.String())
}
