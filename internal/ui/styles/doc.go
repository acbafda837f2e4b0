// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling for specsmith terminal output.

All colors use Lip Gloss AdaptiveColor for automatic light/dark terminal
detection. When colors are disabled (NO_COLOR, non-TTY) lipgloss downgrades
every style to plain text, so callers never branch on color support.

# Color System (colors.go)

  - Purple  - Assistant output and titles
  - Cyan    - User messages and tool notices
  - Emerald - Saved files, created tags
  - Amber   - Prompts, warnings, limit notices
  - Rose    - Errors

# Status Helpers

RenderSuccess, RenderError, RenderWarning and RenderInfo prefix messages with
an ASCII indicator ([OK], [X], [!], [i]) so state never depends on color alone.

# Panels (panels.go)

	fmt.Println(styles.UserPanel("hello", 80))
	fmt.Println(styles.Panel("Specsmith", body, styles.Purple, 0))
*/
package styles
