// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - Credential setup command.
//
// Command: setup
// Short:   Set up API credentials interactively
// Aliases: init
//
// Examples:
//   specsmith setup
//   specsmith setup --access-key-id AKID --access-key-token SECRET
//
// The token prompt does not echo. Credentials are written to
// ~/.specsmith/credentials with owner-only permissions.

package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/specsmith-cli/internal/config"
)

// errCancelled is returned when the user aborts a prompt.
var errCancelled = errors.New("cancelled")

func (a *App) newSetupCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "setup",
		Aliases: []string{"init"},
		Short:   "Set up API credentials interactively",
		Long: `Store your Specsmith API credentials.

You will be asked for your Access Key ID and Access Key Token. Both can be
created in the Specsmith web interface. When --access-key-id and
--access-key-token are given, they are saved without prompting.`,
		Args: cobra.NoArgs,
		RunE: a.runSetup,
	}
}

func (a *App) runSetup(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	printTitle(out, "Specsmith CLI Setup")
	fmt.Fprintln(out, "This will help you configure your API credentials.")
	fmt.Fprintln(out, "You can get your API keys from the Specsmith web interface.")
	fmt.Fprintln(out)

	creds := config.Credentials{
		AccessKeyID:    strings.TrimSpace(a.flags.AccessKeyID),
		AccessKeyToken: strings.TrimSpace(a.flags.AccessKeyToken),
	}
	if creds.AccessKeyID == "" || creds.AccessKeyToken == "" {
		if err := RequiresTTY("configure credentials", a.Interactive()); err != nil {
			return err
		}
		if err := a.promptCredentials(&creds); err != nil {
			return err
		}
	}

	if creds.AccessKeyID == "" || creds.AccessKeyToken == "" {
		return &ValidationError{
			Field:  "credentials",
			Reason: "both Access Key ID and Access Key Token are required",
		}
	}
	if strings.Contains(creds.AccessKeyID, ":") {
		return &ValidationError{Field: "access key id", Reason: "must not contain ':'"}
	}

	path := a.CredentialsFile
	if path == "" {
		var err error
		if path, err = config.CredentialsPath(); err != nil {
			return &ConfigError{Err: err}
		}
	}
	if err := config.SaveCredentials(path, creds); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	printSuccess(out, "Credentials saved to "+path)
	printInfo(out, "Run 'specsmith test' to check them.")
	return nil
}

// promptCredentials fills in whichever half of creds is missing.
func (a *App) promptCredentials(creds *config.Credentials) error {
	editor := a.OpenEditor()
	defer editor.Close()

	if creds.AccessKeyID == "" {
		id, err := editor.Prompt("Enter your Access Key ID: ")
		if err != nil {
			return promptError(err)
		}
		creds.AccessKeyID = strings.TrimSpace(id)
	}
	if creds.AccessKeyToken == "" {
		token, err := editor.PasswordPrompt("Enter your Access Key Token: ")
		if err != nil {
			return promptError(err)
		}
		creds.AccessKeyToken = strings.TrimSpace(token)
	}
	return nil
}

func promptError(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
		return errCancelled
	}
	return fmt.Errorf("read credentials: %w", err)
}
