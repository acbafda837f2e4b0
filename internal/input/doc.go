// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package input reads chat messages and yes/no answers from the terminal.

# Key Types

  - Editor: reads one logical, possibly multi-line, message
  - Terminal: liner-backed LineReader with persistent history
  - LineReader: anything with a liner-style Prompt method

# Multi-line Input

A line ending in a backslash continues on the next line:

	> first line \
	  second line

The backslash is dropped, the line is redrawn without it, and the lines are
joined with newlines. Before ReadLogicalLine returns, every row it drew is
erased so the caller's own echo of the message is the only copy on screen.

# Interrupts

	Ctrl+C on the first line          ErrInterrupted
	Ctrl+C on a continuation line     ErrLineAborted
	Ctrl+D                            io.EOF
*/
package input
