// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the specsmith command line.
//
// # Commands
//
//   - chat [message]: interactive chat, or one message and exit
//   - setup: store API credentials in ~/.specsmith/credentials
//   - test: check that the API is reachable and the credentials work
//   - config: show the resolved configuration (text, json or yaml)
//   - version: print version information
//
// Running specsmith with no command starts a chat.
//
// # Usage
//
//	os.Exit(cli.Execute(os.Args[1:]))
//
// # Exit Codes
//
// Errors map to the codes in errors.go: 2 for usage, 3 for configuration,
// 4 for authentication, 5 for network and 8 for timeouts.
package cli
