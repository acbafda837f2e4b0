// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Output helpers shared by the setup, test and config commands.

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/specsmith-cli/internal/ui/styles"
)

// fieldLabelWidth aligns "Label: value" rows.
const fieldLabelWidth = 16

var labelStyle = styles.LabelStyle.Width(fieldLabelWidth)

// configureColors applies the detected color profile to lipgloss.
func configureColors() {
	lipgloss.SetColorProfile(GetColorProfile())
}

func printTitle(w io.Writer, title string) {
	fmt.Fprintln(w, styles.TitleStyle.Render(title))
	fmt.Fprintln(w)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintln(w, labelStyle.Render(label+":")+" "+styles.ValueStyle.Render(value))
}

func printSuccess(w io.Writer, msg string) {
	fmt.Fprintln(w, styles.RenderSuccess(msg))
}

func printInfo(w io.Writer, msg string) {
	fmt.Fprintln(w, styles.RenderInfo(msg))
}
