// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/specsmith-cli/internal/util"
)

// Credentials is the on-disk shape of ~/.specsmith/credentials.
type Credentials struct {
	AccessKeyID    string `toml:"access_key_id"`
	AccessKeyToken string `toml:"access_key_token"`
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// ConfigDir returns the specsmith configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".specsmith"), nil
}

// CredentialsPath returns the path to the credentials file.
func CredentialsPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "credentials"), nil
}

// ensureSecurePermissions tightens a credentials file to 0600 if needed.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// LoadCredentials reads a credentials file.
// A missing file is not an error: it returns (nil, nil).
//
// Files holding bare access_key_id=... and access_key_token=... lines, as
// earlier clients wrote them, are read as well.
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file %s: %w", path, err)
	}

	// Best effort; some filesystems do not support chmod.
	_ = ensureSecurePermissions(path)

	var creds Credentials
	if _, err := toml.Decode(string(data), &creds); err != nil {
		if legacy, ok := parseKeyValueCredentials(string(data)); ok {
			return legacy, nil
		}
		return nil, fmt.Errorf("failed to decode credentials file %s: %w", path, err)
	}
	return &creds, nil
}

// parseKeyValueCredentials reads unquoted key=value lines. ok is false when
// neither key is present.
func parseKeyValueCredentials(data string) (*Credentials, bool) {
	var creds Credentials
	found := false
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if v, ok := strings.CutPrefix(line, "access_key_id="); ok {
			creds.AccessKeyID = v
			found = true
		} else if v, ok := strings.CutPrefix(line, "access_key_token="); ok {
			creds.AccessKeyToken = v
			found = true
		}
	}
	return &creds, found
}

// SaveCredentials writes the key pair to path with owner-only permissions,
// creating the parent directory if needed.
func SaveCredentials(path string, creds Credentials) error {
	if creds.AccessKeyID == "" || creds.AccessKeyToken == "" {
		return errors.New("both access key id and access key token are required")
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(creds); err != nil {
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := util.WriteFileAtomic(path, buf.Bytes(), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write credentials: %w", err)
	}
	return nil
}
