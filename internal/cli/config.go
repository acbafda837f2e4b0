// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Configuration display command.
//
// Command: config
// Short:   Show current configuration
//
// Examples:
//   specsmith config
//   specsmith config --output json
//   specsmith config -o yaml
//
// The access key ID is masked to its first eight characters. The token is
// never printed.

package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jeranaias/specsmith-cli/internal/config"
)

// Output formats accepted by --output.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// configView is the printable form of a Config.
type configView struct {
	APIURL      string `json:"api_url" yaml:"api_url"`
	AccessKeyID string `json:"access_key_id" yaml:"access_key_id"`
	Debug       bool   `json:"debug" yaml:"debug"`
}

func newConfigView(cfg *config.Config) configView {
	return configView{
		APIURL:      cfg.APIURL,
		AccessKeyID: cfg.MaskedKeyID(),
		Debug:       cfg.Debug,
	}
}

func (a *App) newConfigCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show current configuration",
		Long: `Show the configuration resolved from flags, environment variables and
the credentials file. The access key token is never shown.`,
		Args: cobra.NoArgs,
		PreRunE: func(_ *cobra.Command, _ []string) error {
			switch output {
			case OutputText, OutputYAML:
			case OutputJSON:
				a.jsonError = true
			default:
				return &ValidationError{
					Field:   "output",
					Value:   output,
					Reason:  "unsupported format",
					Example: "specsmith config --output json",
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			return writeConfig(cmd.OutOrStdout(), newConfigView(cfg), output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", OutputText, "Output format (text, json, yaml)")
	return cmd
}

func writeConfig(w io.Writer, view configView, format string) error {
	switch format {
	case OutputJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(view)
	case OutputYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(view); err != nil {
			return err
		}
		return encoder.Close()
	}

	printTitle(w, "Current Configuration")
	printField(w, "API URL", view.APIURL)
	printField(w, "Access Key ID", view.AccessKeyID)
	printField(w, "Debug Mode", strconv.FormatBool(view.Debug))
	_, err := fmt.Fprintln(w)
	return err
}
