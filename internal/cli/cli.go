// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - Root command, global flags and command wiring.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/specsmith-cli/internal/agent"
	"github.com/jeranaias/specsmith-cli/internal/config"
	"github.com/jeranaias/specsmith-cli/internal/input"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// LineEditor is the terminal line editor used for chat input and prompts.
type LineEditor interface {
	input.LineReader
	PasswordPrompt(prompt string) (string, error)
	Close() error
}

// App holds the process-level collaborators of every command.
// The zero value is not usable; call NewApp.
type App struct {
	Out io.Writer
	Err io.Writer

	// Interactive reports whether stdin is a terminal.
	Interactive func() bool
	// OpenEditor takes over the terminal for line editing.
	OpenEditor func() LineEditor
	// NewAPI builds the protocol client for a resolved config.
	NewAPI func(cfg *config.Config, opts ...agent.Option) *agent.Client
	// CredentialsFile overrides ~/.specsmith/credentials when non-empty.
	CredentialsFile string

	flags     config.Overrides
	jsonError bool
}

// NewApp returns an App bound to the real process streams and terminal.
func NewApp() *App {
	return &App{
		Out:         os.Stdout,
		Err:         os.Stderr,
		Interactive: IsTTY,
		OpenEditor: func() LineEditor {
			return input.NewTerminal(input.DefaultHistoryFile())
		},
		NewAPI: agent.NewClient,
	}
}

// Execute runs the command line and returns the process exit code.
func Execute(args []string) int {
	configureColors()
	return NewApp().Run(context.Background(), args)
}

// Run executes args against a fresh command tree.
func (a *App) Run(ctx context.Context, args []string) int {
	root := a.NewRootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var already *reportedError
	if !errors.As(err, &already) {
		DisplayError(a.Err, err, a.jsonError)
	}
	return GetExitCode(err)
}

// NewRootCommand builds the specsmith command tree.
func (a *App) NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "specsmith",
		Short: "Command line interface for the Specsmith Agent",
		Long: `Chat with the Specsmith Agent from your terminal.

Replies stream in as rendered markdown. Files the agent proposes are saved
to the working directory after you confirm.

Credentials are read, in order, from command line flags, the
SPECSMITH_ACCESS_KEY_ID / SPECSMITH_ACCESS_KEY_TOKEN environment variables
and ~/.specsmith/credentials (written by "specsmith setup").

Quick Start:
  specsmith setup                      # Store your API keys
  specsmith test                       # Check the connection
  specsmith chat                       # Start chatting
  specsmith chat "Draft a spec for X"  # Send one message and exit`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd, nil)
		},
	}
	root.SetOut(a.Out)
	root.SetErr(a.Err)
	root.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.APIURL, "api-url", "", "Specsmith API URL (env "+config.EnvAPIURL+")")
	flags.StringVar(&a.flags.AccessKeyID, "access-key-id", "", "Access key ID (env "+config.EnvAccessKeyID+")")
	flags.StringVar(&a.flags.AccessKeyToken, "access-key-token", "", "Access key token (env "+config.EnvAccessKeyToken+")")
	flags.BoolVarP(&a.flags.Debug, "debug", "d", false, "Enable debug logging (env "+config.EnvDebug+")")

	root.AddCommand(
		a.newChatCommand(),
		a.newSetupCommand(),
		a.newTestCommand(),
		a.newConfigCommand(),
		a.newVersionCommand(),
	)
	return root
}

// loadConfig resolves configuration for commands that talk to the API.
func (a *App) loadConfig() (*config.Config, error) {
	overrides := a.flags
	overrides.CredentialsFile = a.CredentialsFile

	cfg, err := config.Load(overrides)
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Err: err}
	}
	return cfg, nil
}

func userAgent() string {
	return "specsmith-cli/" + strings.TrimPrefix(Version, "v")
}
