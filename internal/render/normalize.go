// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "strings"

const (
	// fenceMarker opens and closes a fenced code block.
	fenceMarker = "```"

	// codeIndent is the indentation at which markdown starts an indented
	// code block.
	codeIndent = 4

	// maxNestedIndent is the deepest list or quote indentation kept as is.
	maxNestedIndent = 6
)

// NormalizeMarkdown removes indentation that would turn prose into an
// indented code block. Lines inside fenced blocks, and the fence lines
// themselves, are returned byte-for-byte. Outside fences trailing
// whitespace is trimmed. The function is idempotent.
func NormalizeMarkdown(text string) string {
	if text == "" {
		return ""
	}

	lines := strings.Split(text, "\n")
	inFence := false

	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")

		if strings.HasPrefix(trimmed, fenceMarker) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		line = strings.TrimRight(line, " \t\r")
		trimmed = strings.TrimRight(trimmed, " \t\r")
		indent := len(line) - len(trimmed)

		if indent >= codeIndent && !(isNestedMarker(trimmed) && indent <= maxNestedIndent) {
			line = trimmed
		}
		lines[i] = line
	}

	return strings.Join(lines, "\n")
}

// isNestedMarker reports whether a trimmed line starts a list item or quote.
func isNestedMarker(trimmed string) bool {
	if trimmed == "" {
		return false
	}
	switch trimmed[0] {
	case '-', '*', '+', '>':
		return true
	}
	return false
}
