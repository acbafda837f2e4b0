// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Chat command.
//
// Command: chat [message]
// Short:   Start a chat session with the Specsmith Agent
//
// Examples:
//   specsmith chat                          Interactive session
//   specsmith chat "Outline a REST API"     One message, then exit
//   specsmith --debug chat                  Show debug logs and raw errors

package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/specsmith-cli/internal/agent"
	"github.com/jeranaias/specsmith-cli/internal/chat"
	"github.com/jeranaias/specsmith-cli/internal/input"
	"github.com/jeranaias/specsmith-cli/internal/logging"
	"github.com/jeranaias/specsmith-cli/internal/render"
)

func (a *App) newChatCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Start a chat session with the Specsmith Agent",
		Long: `Start a chat session with the Specsmith Agent.

Without a message, opens an interactive session. End a line with \ to keep
typing on the next line. Type quit, exit or q (or press Ctrl+D) to leave.
Ctrl+C stops the reply being streamed.

With a message, sends it, shows the reply and exits.`,
		RunE: a.runChat,
	}
}

func (a *App) runChat(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}

	console := render.NewConsole(a.Out)
	logger := logging.New(console, cfg.Debug)
	client := a.NewAPI(cfg,
		agent.WithLogger(logger),
		agent.WithUserAgent(userAgent()),
	)

	opts := chat.Options{
		API:     client,
		Out:     console,
		Logger:  logger,
		Verbose: cfg.Debug,
		Width:   console.Width,
		StartLive: func() chat.LiveRegion {
			return console.StartLive(render.NewRenderer(console.Interactive(), console.Width()))
		},
	}

	message := strings.TrimSpace(strings.Join(args, " "))
	interactive := a.Interactive()

	if message == "" && !interactive {
		return &TTYRequiredError{Operation: "chat"}
	}

	if interactive {
		editor := a.OpenEditor()
		defer editor.Close()

		lines := input.NewEditor(editor, input.WithEcho(console.Output(), console.Width))
		opts.Input = lines
		opts.Prompter = lines
		if message == "" {
			opts.ClearScreen = console.Clear
		}
	}

	session := chat.NewSession(opts)
	if message != "" {
		err = session.RunOnce(cmd.Context(), message)
	} else {
		err = session.Run(cmd.Context())
	}
	// The session shows connection and turn failures itself.
	if errors.Is(err, chat.ErrInput) {
		return err
	}
	return reported(err)
}
