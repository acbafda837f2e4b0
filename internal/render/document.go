// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import "strings"

// Document accumulates the text of one streamed reply.
// It is not safe for concurrent use.
type Document struct {
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	buf strings.Builder
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{}
}

// Append adds a delta to the end of the document.
func (d *Document) Append(delta string) {
	d.buf.WriteString(delta)
}

// Raw returns the text exactly as received.
func (d *Document) Raw() string {
	return d.buf.String()
}

// Snapshot returns the normalized view of the full text.
// It has no side effects and may be called any number of times.
func (d *Document) Snapshot() string {
	return NormalizeMarkdown(d.buf.String())
}

// Len returns the number of bytes received.
func (d *Document) Len() int {
	return d.buf.Len()
}

// Reset empties the document.
func (d *Document) Reset() {
	d.buf.Reset()
}
