// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// test.go - Connection test command.
//
// Command: test
// Short:   Test the connection to the Specsmith API
//
// Runs the health probe, then the authentication probe. Exits 4 when the
// credentials are rejected and 5 when the API cannot be reached.

package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/specsmith-cli/internal/agent"
	"github.com/jeranaias/specsmith-cli/internal/logging"
	"github.com/jeranaias/specsmith-cli/internal/ui/styles"
)

// probeTimeout bounds the whole connection test.
const probeTimeout = 30 * time.Second

func (a *App) newTestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Test the connection to the Specsmith API",
		Args:  cobra.NoArgs,
		RunE:  a.runTest,
	}
}

func (a *App) runTest(cmd *cobra.Command, _ []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	client := a.NewAPI(cfg,
		agent.WithLogger(logging.New(a.Err, cfg.Debug)),
		agent.WithUserAgent(userAgent()),
		agent.WithTimeout(probeTimeout),
	)
	defer client.Close()

	printInfo(out, "Testing connection to Specsmith API...")
	if err := client.TestConnection(cmd.Context()); err != nil {
		fmt.Fprintln(out, styles.RenderError("Connection failed"))
		title, body, _ := strings.Cut(agent.FriendlyMessage(err, cfg.Debug), "\n")
		fmt.Fprintln(out, styles.RenderError(title))
		if body != "" {
			fmt.Fprintln(out, styles.DimStyle.Render(body))
		}
		return reported(err)
	}

	printSuccess(out, "Connection successful!")
	printField(out, "API URL", cfg.APIURL)
	fmt.Fprintln(out, "Your credentials are working correctly.")
	return nil
}
