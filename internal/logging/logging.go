// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the structured logger shared by every specsmith
// component.
//
// Output goes to whatever writer the caller supplies. The chat command passes
// its render.Console so that log lines are inserted above a live response
// instead of tearing through it.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

// Prefix tags every log line.
const Prefix = "specsmith"

// New returns a logger writing to w. Verbose lowers the level to debug and
// adds timestamps; otherwise only warnings and errors are emitted.
func New(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		Prefix:          Prefix,
		ReportTimestamp: verbose,
		TimeFormat:      "15:04:05.000",
	})
}

// Discard returns a logger that drops everything. Useful as a zero value.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
