// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides file and string helpers shared by specsmith packages.
//
// # Key Functions
//
//   - WriteFileAtomic: crash-safe file writing with fsync and rename
//   - TruncateWidth: display-width aware truncation with ellipsis
//
// # Usage
//
//	// Save an agent-proposed file without leaving a partial write behind
//	err := util.WriteFileAtomic("docs/spec.md", data, 0644, 0755)
//
//	// Shorten a payload for a single terminal line
//	line := util.TruncateWidth(raw, 60)
package util
