// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultAPIURL is used when neither a flag nor the environment names an API.
	DefaultAPIURL = "http://localhost:8000"

	// Environment variables consulted by Load.
	EnvAPIURL         = "SPECSMITH_API_URL"
	EnvAccessKeyID    = "SPECSMITH_ACCESS_KEY_ID"
	EnvAccessKeyToken = "SPECSMITH_ACCESS_KEY_TOKEN"
	EnvDebug          = "SPECSMITH_DEBUG"
)

// ErrMissingCredentials is returned by Load when no source supplies both keys.
var ErrMissingCredentials = errors.New("API credentials not found. Please set them via:\n" +
	"  1. Environment variables: " + EnvAccessKeyID + " and " + EnvAccessKeyToken + "\n" +
	"  2. Config file: ~/.specsmith/credentials (run: specsmith setup)\n" +
	"  3. Command line arguments: --access-key-id and --access-key-token")

// =============================================================================
// CONFIG
// =============================================================================

// Config is the resolved client configuration.
type Config struct {
	// APIURL is the base URL of the agent API, without a trailing slash.
	APIURL string `json:"api_url" yaml:"api_url"`
	// AccessKeyID identifies the API key.
	AccessKeyID string `json:"access_key_id" yaml:"access_key_id"`
	// AccessKeyToken is the secret half of the API key. Never printed.
	AccessKeyToken string `json:"-" yaml:"-"`
	// Debug enables verbose diagnostics.
	Debug bool `json:"debug" yaml:"debug"`
}

// Overrides carries values given on the command line. Empty strings mean "not set".
type Overrides struct {
	APIURL         string
	AccessKeyID    string
	AccessKeyToken string
	Debug          bool

	// CredentialsFile replaces the default credentials path when non-empty.
	CredentialsFile string
}

// Load resolves a Config from flags, environment and the credentials file.
// Returns ErrMissingCredentials if the key pair cannot be found anywhere.
func Load(o Overrides) (*Config, error) {
	cfg := &Config{
		APIURL:         firstNonEmpty(o.APIURL, os.Getenv(EnvAPIURL), DefaultAPIURL),
		AccessKeyID:    firstNonEmpty(o.AccessKeyID, os.Getenv(EnvAccessKeyID)),
		AccessKeyToken: firstNonEmpty(o.AccessKeyToken, os.Getenv(EnvAccessKeyToken)),
		Debug:          o.Debug || envBool(os.Getenv(EnvDebug)),
	}
	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")

	if cfg.AccessKeyID == "" || cfg.AccessKeyToken == "" {
		path := o.CredentialsFile
		if path == "" {
			var err error
			if path, err = CredentialsPath(); err != nil {
				return nil, err
			}
		}
		creds, err := LoadCredentials(path)
		if err != nil {
			return nil, err
		}
		if creds != nil {
			cfg.AccessKeyID = firstNonEmpty(cfg.AccessKeyID, creds.AccessKeyID)
			cfg.AccessKeyToken = firstNonEmpty(cfg.AccessKeyToken, creds.AccessKeyToken)
		}
	}

	if cfg.AccessKeyID == "" || cfg.AccessKeyToken == "" {
		return cfg, ErrMissingCredentials
	}
	return cfg, nil
}

// AuthHeader returns the HTTP Basic authorization value for the key pair.
func (c *Config) AuthHeader() (string, error) {
	if c.AccessKeyID == "" || c.AccessKeyToken == "" {
		return "", errors.New("access key id and token are required")
	}
	// A colon in the id would make the pair ambiguous once decoded.
	if strings.Contains(c.AccessKeyID, ":") {
		return "", errors.New("access key id must not contain ':'")
	}
	raw := c.AccessKeyID + ":" + c.AccessKeyToken
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// Validate checks the API URL and the credential format.
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil {
		return fmt.Errorf("invalid api url %q: %w", c.APIURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid api url %q: scheme must be http or https", c.APIURL)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid api url %q: missing host", c.APIURL)
	}
	if _, err := c.AuthHeader(); err != nil {
		return fmt.Errorf("invalid credentials: %w", err)
	}
	return nil
}

// MaskedKeyID returns the first eight characters of the key id for display.
func (c *Config) MaskedKeyID() string {
	if len(c.AccessKeyID) <= 8 {
		return c.AccessKeyID + "..."
	}
	return c.AccessKeyID[:8] + "..."
}

// =============================================================================
// HELPERS
// =============================================================================

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func envBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes":
		return true
	}
	return false
}
