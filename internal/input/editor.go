// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"errors"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"github.com/peterh/liner"
)

const (
	// DefaultPrompt starts a message.
	DefaultPrompt = "> "
	// DefaultContinuationPrompt starts each continuation line.
	DefaultContinuationPrompt = "  "

	continuationMarker = `\`
)

var (
	// ErrInterrupted means the user asked to leave the program.
	ErrInterrupted = errors.New("input interrupted")
	// ErrLineAborted means the user abandoned the message being typed.
	ErrLineAborted = errors.New("input line aborted")
)

// LineReader reads one edited line. *liner.State satisfies it.
// Implementations return liner.ErrPromptAborted on Ctrl+C and io.EOF on Ctrl+D.
type LineReader interface {
	Prompt(prompt string) (string, error)
}

// historyAppender is implemented by readers that keep history.
type historyAppender interface {
	AppendHistory(item string)
}

// =============================================================================
// EDITOR
// =============================================================================

// Editor reads logical lines from a LineReader.
type Editor struct {
	reader       LineReader
	out          *termenv.Output
	width        func() int
	prompt       string
	continuation string
}

// EditorOption configures an Editor.
type EditorOption func(*Editor)

// WithEcho enables erasing of the rows the reader echoed. out must be the
// terminal the reader draws on; width reports its column count.
func WithEcho(out *termenv.Output, width func() int) EditorOption {
	return func(e *Editor) {
		e.out = out
		e.width = width
	}
}

// WithPrompts overrides the first-line and continuation prompts.
func WithPrompts(prompt, continuation string) EditorOption {
	return func(e *Editor) {
		e.prompt = prompt
		e.continuation = continuation
	}
}

// NewEditor creates an editor over r. Without WithEcho nothing is erased,
// which suits input that is not a terminal.
func NewEditor(r LineReader, opts ...EditorOption) *Editor {
	e := &Editor{
		reader:       r,
		prompt:       DefaultPrompt,
		continuation: DefaultContinuationPrompt,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ReadLogicalLine reads lines until one does not end in a backslash and
// returns them joined with newlines. On every return path the rows drawn
// during input have already been erased.
func (e *Editor) ReadLogicalLine() (string, error) {
	var (
		lines []string
		rows  int
	)
	defer func() { e.erase(rows) }()

	for {
		prompt := e.prompt
		if len(lines) > 0 {
			prompt = e.continuation
		}

		raw, err := e.reader.Prompt(prompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				// The aborted prompt is still on screen.
				rows += e.rowsFor(prompt)
				if len(lines) > 0 {
					return "", ErrLineAborted
				}
				return "", ErrInterrupted
			}
			if errors.Is(err, io.EOF) {
				return "", io.EOF
			}
			return "", err
		}

		lineRows := e.rowsFor(prompt + raw)
		text, more := splitContinuation(raw)
		if !more {
			rows += lineRows
			lines = append(lines, text)
			break
		}

		// Redraw the line without its marker.
		e.erase(lineRows)
		e.echo(prompt + text)
		rows += e.rowsFor(prompt + text)
		lines = append(lines, text)
	}

	message := strings.Join(lines, "\n")
	if h, ok := e.reader.(historyAppender); ok && strings.TrimSpace(message) != "" {
		// History files hold one entry per line.
		h.AppendHistory(strings.Join(lines, " "))
	}
	return message, nil
}

// splitContinuation strips a trailing continuation marker and the spaces
// before it. more reports whether the marker was present.
func splitContinuation(line string) (text string, more bool) {
	trimmed := strings.TrimRight(line, " \t")
	if !strings.HasSuffix(trimmed, continuationMarker) {
		return line, false
	}
	return strings.TrimRight(strings.TrimSuffix(trimmed, continuationMarker), " \t"), true
}

// =============================================================================
// TERMINAL ROWS
// =============================================================================

// rowsFor returns how many rows s occupies once echoed and submitted.
func (e *Editor) rowsFor(s string) int {
	if e.out == nil {
		return 0
	}
	width := e.width()
	w := runewidth.StringWidth(s)
	if width <= 0 || w == 0 {
		return 1
	}
	return (w + width - 1) / width
}

// erase clears n rows above the cursor, leaving it at the first of them.
func (e *Editor) erase(n int) {
	if e.out == nil || n <= 0 {
		return
	}
	e.out.ClearLines(n)
}

func (e *Editor) echo(s string) {
	if e.out == nil {
		return
	}
	e.out.WriteString(s + "\n")
}
