// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/peterh/liner"

	"github.com/jeranaias/specsmith-cli/internal/config"
	"github.com/jeranaias/specsmith-cli/internal/util"
)

// HistoryFileName is the history file inside the config directory.
const HistoryFileName = "chat_history"

// Terminal provides input history and line editing.
// Supports arrow keys for history navigation and line editing.
type Terminal struct {
	line        *liner.State
	historyFile string
}

// NewTerminal takes over the terminal for line editing and loads history.
// An empty historyFile disables history.
func NewTerminal(historyFile string) *Terminal {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	t := &Terminal{
		line:        line,
		historyFile: historyFile,
	}
	t.LoadHistory()
	return t
}

// DefaultHistoryFile returns the history path in the config directory,
// falling back to the temp directory.
func DefaultHistoryFile() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, HistoryFileName)
}

// Prompt reads one line.
func (t *Terminal) Prompt(prompt string) (string, error) {
	return t.line.Prompt(prompt)
}

// PasswordPrompt reads one line without echo.
func (t *Terminal) PasswordPrompt(prompt string) (string, error) {
	return t.line.PasswordPrompt(prompt)
}

// AppendHistory records a submitted message.
func (t *Terminal) AppendHistory(item string) {
	t.line.AppendHistory(item)
}

// LoadHistory loads history from file.
func (t *Terminal) LoadHistory() {
	if t.historyFile == "" {
		return
	}
	if f, err := os.Open(t.historyFile); err == nil {
		t.line.ReadHistory(f)
		f.Close()
	}
}

// SaveHistory persists history with owner-only permissions.
func (t *Terminal) SaveHistory() error {
	if t.historyFile == "" {
		return nil
	}
	return writeHistoryFile(t.historyFile, t.line)
}

// historyWriter is implemented by *liner.State.
type historyWriter interface {
	WriteHistory(w io.Writer) (int, error)
}

// writeHistoryFile replaces path with h's history, creating the parent
// directory owner-only.
func writeHistoryFile(path string, h historyWriter) error {
	var buf bytes.Buffer
	if _, err := h.WriteHistory(&buf); err != nil {
		return err
	}
	return util.WriteFileAtomic(path, buf.Bytes(), 0600, 0700)
}

// Close saves history and restores the terminal.
func (t *Terminal) Close() error {
	saveErr := t.SaveHistory()
	if err := t.line.Close(); err != nil {
		return err
	}
	return saveErr
}
