// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/specsmith-cli/internal/agent"
	"github.com/jeranaias/specsmith-cli/internal/render"
	"github.com/jeranaias/specsmith-cli/internal/util"
)

// rawPreviewWidth bounds the payload shown for unknown actions.
const rawPreviewWidth = 120

// dispatcher applies the actions of one reply, in arrival order.
type dispatcher struct {
	live    LiveRegion
	doc     *render.Document
	verbose bool
	logger  *log.Logger
	pending []PendingFileSave
}

func newDispatcher(live LiveRegion, verbose bool, logger *log.Logger) *dispatcher {
	return &dispatcher{
		live:    live,
		doc:     render.NewDocument(),
		verbose: verbose,
		logger:  logger,
	}
}

func (d *dispatcher) dispatch(action agent.Action) {
	d.logger.Debug("action", "type", action.Type())

	switch a := action.(type) {
	case agent.Message:
		if a.Content == "" {
			return
		}
		d.doc.Append(a.Content)
		d.live.Update(d.doc.Snapshot())

	case agent.FileProposal:
		d.pending = append(d.pending, PendingFileSave{Filename: a.Filename, Content: a.Content})

	case agent.ToolUse:
		d.live.Println(toolLine(a))

	case agent.LimitNotice:
		if a.Content != "" {
			d.live.Println(dimStyle(a.Content))
		}

	case agent.UserActionResult:
		d.dispatchResult(a.Result)

	case agent.Unknown:
		if d.verbose {
			d.live.Println(warningLine(fmt.Sprintf("Unknown action type %q: %s", a.Tag, util.TruncateWidth(string(a.Raw), rawPreviewWidth))))
		}
	}
}

func (d *dispatcher) dispatchResult(result agent.UserAction) {
	switch r := result.(type) {
	case agent.FileSaved:
		d.pending = append(d.pending, PendingFileSave{Filename: r.Filename, Content: r.Content})

	case agent.TagCreated:
		line := "Created tag " + r.Tag
		if r.Message != "" {
			line += ": " + r.Message
		}
		d.live.Println(successLine(line))

	case agent.ActionError:
		op := r.Operation
		if op == "" {
			op = "operation"
		}
		line := op + " failed"
		if r.Message != "" {
			line += ": " + r.Message
		}
		d.live.Println(errorLine(line))
	}
}

// Snapshot returns the normalized reply so far.
func (d *dispatcher) Snapshot() string {
	return d.doc.Snapshot()
}

func toolLine(t agent.ToolUse) string {
	desc := t.Description
	if desc == "" {
		desc = t.ToolName
	}
	if desc == "" {
		desc = "tool"
	}
	return dimStyle("( " + desc + " )…")
}
