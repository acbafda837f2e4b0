// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/jeranaias/specsmith-cli/internal/agent"
	"github.com/jeranaias/specsmith-cli/internal/ui/styles"
)

// =============================================================================
// LINE STYLES
// =============================================================================

func dimStyle(s string) string    { return styles.DimStyle.Render(s) }
func successLine(s string) string { return styles.RenderSuccess(s) }
func warningLine(s string) string { return styles.RenderWarning(s) }
func errorLine(s string) string   { return styles.RenderError(s) }

// =============================================================================
// PANELS
// =============================================================================

const welcomeBody = "* Welcome to Specsmith Agent!\n\n" +
	"How can I help you today?\n\n" +
	"I can help you create, refine, and manage software specifications."

var inputHints = []string{
	"End a line with \\ to continue on the next line",
	"Press Enter to submit your message",
	"Type quit or press Ctrl+C / Ctrl+D to exit",
}

func (s *Session) width() int {
	if s.opts.Width == nil {
		return 0
	}
	return s.opts.Width()
}

// showWelcome prints the welcome panel and input hints, once per session.
func (s *Session) showWelcome() {
	if s.welcomed {
		return
	}
	s.welcomed = true

	if s.opts.ClearScreen != nil {
		s.opts.ClearScreen()
	}
	s.println(styles.Panel("", styles.TitleStyle.Render(welcomeBody), styles.Cyan, s.width()))
	s.println("")
	for _, hint := range inputHints {
		s.println(" - " + hint)
	}
	s.println("")
}

// showUserMessage echoes the submitted message in a panel.
func (s *Session) showUserMessage(message string) {
	lines := strings.Split(message, "\n")
	for i, line := range lines {
		if i == 0 {
			lines[i] = "> " + line
		} else {
			lines[i] = "  " + line
		}
	}
	s.println(styles.Panel("", styles.DimStyle.Render(strings.Join(lines, "\n")), styles.Overlay, s.width()))
	s.println("")
}

func (s *Session) showGoodbye() {
	s.println(dimStyle("Goodbye!"))
}

// showTurnError reports a failed turn with its fixed user-facing text.
func (s *Session) showTurnError(err error) {
	s.logger.Debug("turn failed", "err", err, "category", agent.Classify(err))
	s.printFriendly(err)
}

func (s *Session) showConnectError(err error) {
	s.logger.Debug("connection failed", "err", err, "category", agent.Classify(err))
	s.println(errorLine("Failed to connect to Specsmith API"))
	s.printFriendly(err)
	if agent.Classify(err) == agent.CategoryAuthentication {
		s.println("You can update your credentials by running: specsmith setup")
	}
}

func (s *Session) printFriendly(err error) {
	title, body, _ := strings.Cut(agent.FriendlyMessage(err, s.opts.Verbose), "\n")
	s.println(errorLine(title))
	if body != "" {
		s.println(dimStyle(body))
	}
}
