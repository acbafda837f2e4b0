// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Renderer turns markdown into terminal text.
type Renderer interface {
	Render(markdown string) string
}

// MarkdownRenderer renders through glamour.
type MarkdownRenderer struct {
	tr *glamour.TermRenderer
}

// NewMarkdownRenderer creates a glamour renderer wrapping at width columns.
// The style follows the terminal background.
func NewMarkdownRenderer(width int) (*MarkdownRenderer, error) {
	tr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	return &MarkdownRenderer{tr: tr}, nil
}

// Render returns the rendered text, or the input unchanged if glamour fails.
// Surrounding blank lines added by glamour are removed.
func (r *MarkdownRenderer) Render(markdown string) string {
	out, err := r.tr.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.Trim(out, "\n")
}

// PlainRenderer passes markdown through unchanged.
type PlainRenderer struct{}

// Render returns markdown without its trailing newlines.
func (PlainRenderer) Render(markdown string) string {
	return strings.TrimRight(markdown, "\n")
}

// NewRenderer picks glamour for interactive output and plain text otherwise.
// If glamour cannot be initialised the plain renderer is used.
func NewRenderer(interactive bool, width int) Renderer {
	if !interactive {
		return PlainRenderer{}
	}
	r, err := NewMarkdownRenderer(width)
	if err != nil {
		return PlainRenderer{}
	}
	return r
}
