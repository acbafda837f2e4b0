// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// TEXT STYLES
// =============================================================================

var (
	// TitleStyle is used for headings such as the welcome banner title.
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(Purple)

	// DimStyle is used for hints and informational notices.
	DimStyle = lipgloss.NewStyle().Foreground(TextMuted)

	// LabelStyle is used for "key:" labels in status output.
	LabelStyle = lipgloss.NewStyle().Foreground(TextSecondary)

	// ValueStyle is used for values next to labels.
	ValueStyle = lipgloss.NewStyle().Foreground(TextPrimary).Bold(true)

	// ToolStyle is used for tool-use notices.
	ToolStyle = lipgloss.NewStyle().Foreground(Cyan).Italic(true)

	// PromptStyle is used for yes/no questions.
	PromptStyle = lipgloss.NewStyle().Foreground(Amber).Bold(true)
)

// =============================================================================
// PANELS
// =============================================================================

// Panel draws body inside a rounded border with an optional bold title line.
// Width is the outer width; zero leaves the panel sized to its content.
func Panel(title, body string, border lipgloss.TerminalColor, width int) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1)
	if width > 0 {
		// Width excludes the border in lipgloss.
		style = style.Width(width - 2)
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(border).Render(title))
		b.WriteString("\n")
	}
	b.WriteString(body)
	return style.Render(b.String())
}

// UserPanel renders an echoed user message.
func UserPanel(message string, width int) string {
	return Panel("You", message, UserBorder, width)
}
