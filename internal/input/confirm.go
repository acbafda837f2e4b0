// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package input

import (
	"errors"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// maxConfirmAttempts bounds re-asking when the answer is not understood.
const maxConfirmAttempts = 5

// Confirm asks a yes/no question on r. A blank answer picks the default;
// anything unrecognised asks again. Ctrl+C returns ErrInterrupted and
// Ctrl+D returns io.EOF.
func Confirm(r LineReader, question string, defaultYes bool) (bool, error) {
	hint := " [y/N] "
	if defaultYes {
		hint = " [Y/n] "
	}

	for attempt := 0; attempt < maxConfirmAttempts; attempt++ {
		answer, err := r.Prompt(question + hint)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				return false, ErrInterrupted
			}
			if errors.Is(err, io.EOF) {
				return false, io.EOF
			}
			return false, err
		}

		switch strings.ToLower(strings.TrimSpace(answer)) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
	return defaultYes, nil
}

// Confirm asks a yes/no question on the editor's reader.
func (e *Editor) Confirm(question string, defaultYes bool) (bool, error) {
	return Confirm(e.reader, question, defaultYes)
}
