// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package render draws streamed assistant replies in the terminal.

# Key Types

  - Document: accumulates message deltas; Snapshot returns normalized markdown
  - Console: owns stdout; scrollback writes go above any open live region
  - Live: a bounded region repainted in place at a fixed cadence
  - Renderer: markdown to terminal text (glamour, or plain passthrough)

# Normalization

NormalizeMarkdown runs over the whole accumulated text on every snapshot,
because whether a line sits inside a fenced block depends on every line
before it. Outside fences, four or more leading spaces would turn prose into
an indented code block, so they are stripped unless the line is a list item
or quote indented at most six spaces. Fenced content is never touched.

# Usage

	console := render.NewConsole(os.Stdout)
	doc := render.NewDocument()
	live := console.StartLive(render.NewRenderer(console.Interactive(), console.Width()))

	for each delta {
	    doc.Append(delta)
	    live.Update(doc.Snapshot())
	}
	live.Close() // final rendering stays in scrollback
*/
package render
