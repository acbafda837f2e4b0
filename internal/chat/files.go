// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jeranaias/specsmith-cli/internal/util"
)

// PendingFileSave is a file offered during a reply, saved after it ends.
type PendingFileSave struct {
	Filename string
	Content  string
}

// Files is the filesystem as seen by the save prompts.
type Files interface {
	Exists(path string) bool
	// WriteAll writes content to path, creating parent directories.
	WriteAll(path, content string) error
}

// OSFiles resolves paths against Root, or the working directory when empty.
type OSFiles struct {
	Root string
}

// Exists reports whether anything exists at path.
func (f OSFiles) Exists(path string) bool {
	_, err := os.Stat(f.resolve(path))
	return err == nil
}

// WriteAll writes content to path, creating parent directories.
func (f OSFiles) WriteAll(path, content string) error {
	if err := util.WriteFileAtomic(f.resolve(path), []byte(content), 0644, 0755); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func (f OSFiles) resolve(path string) string {
	if f.Root == "" {
		return path
	}
	return filepath.Join(f.Root, path)
}

// ValidateFilename rejects names that are empty, absolute, or that climb out
// of the working directory. It returns the cleaned relative path.
func ValidateFilename(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", errors.New("empty filename")
	}
	if filepath.IsAbs(name) || filepath.VolumeName(name) != "" || strings.HasPrefix(name, "/") {
		return "", errors.New("absolute paths are not allowed")
	}

	cleaned := filepath.Clean(name)
	// SECURITY: compare against the parent with a separator so "..foo" stays allowed
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", errors.New("path escapes the working directory")
	}
	return cleaned, nil
}

// describeContent summarises content as "N chars, M lines".
func describeContent(content string) string {
	return fmt.Sprintf("%d chars, %d lines", len([]rune(content)), lineCount(content))
}

func lineCount(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
