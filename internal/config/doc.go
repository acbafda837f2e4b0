// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and credential storage for specsmith.
//
// A Config is resolved once at startup and handed to the rest of the program
// as a read-only value. Each field is resolved independently, first match wins:
//
//   - command-line flags
//   - environment (SPECSMITH_API_URL, SPECSMITH_ACCESS_KEY_ID,
//     SPECSMITH_ACCESS_KEY_TOKEN, SPECSMITH_DEBUG)
//   - the credentials file at ~/.specsmith/credentials (TOML)
//   - built-in defaults (API URL only)
//
// # Usage
//
//	cfg, err := config.Load(config.Overrides{APIURL: flagURL})
//	if err != nil {
//	    return err
//	}
//	header, err := cfg.AuthHeader()
package config
