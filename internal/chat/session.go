// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/jeranaias/specsmith-cli/internal/agent"
	"github.com/jeranaias/specsmith-cli/internal/input"
	"github.com/jeranaias/specsmith-cli/internal/logging"
	"github.com/jeranaias/specsmith-cli/internal/render"
)

var (
	// ErrTurnInterrupted is returned by RunOnce when the reply was interrupted.
	ErrTurnInterrupted = errors.New("response interrupted")
	// ErrInput wraps failures of the input editor. Run does not display them.
	ErrInput = errors.New("read input")
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// API is the part of the agent client the loop uses.
type API interface {
	TestConnection(ctx context.Context) error
	CreateSession(ctx context.Context) (string, error)
	SendMessage(ctx context.Context, sessionID, text string) (*agent.Stream, error)
	Close() error
}

// Input reads one logical user message.
type Input interface {
	ReadLogicalLine() (string, error)
}

// Prompter asks yes/no questions.
type Prompter interface {
	Confirm(question string, defaultYes bool) (bool, error)
}

// LiveRegion is the in-place display of the reply being streamed.
type LiveRegion interface {
	Update(markdown string)
	Println(line string)
	Close() error
}

// =============================================================================
// SESSION
// =============================================================================

// Options wires a Session. API, Out and StartLive are required; Input and
// Prompter are required for Run.
type Options struct {
	API      API
	Input    Input
	Prompter Prompter
	// Files defaults to OSFiles in the working directory.
	Files Files
	// Out receives scrollback output.
	Out io.Writer
	// StartLive opens a live region for one reply.
	StartLive func() LiveRegion
	Logger    *log.Logger
	Verbose   bool
	// Width is the terminal width used for panels. Nil means unbounded.
	Width func() int
	// ClearScreen runs once before the welcome panel. Optional.
	ClearScreen func()
	// InterruptContext derives the context of one reply. The default cancels
	// it on SIGINT.
	InterruptContext func(ctx context.Context) (context.Context, context.CancelFunc)
	// OnState observes state transitions. Optional.
	OnState func(State)
}

// Session is one chat with the agent.
type Session struct {
	opts      Options
	logger    *log.Logger
	state     State
	sessionID string
	welcomed  bool
}

// NewSession creates a session in the IDLE state.
func NewSession(opts Options) *Session {
	if opts.Files == nil {
		opts.Files = OSFiles{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.InterruptContext == nil {
		opts.InterruptContext = func(ctx context.Context) (context.Context, context.CancelFunc) {
			return signal.NotifyContext(ctx, os.Interrupt)
		}
	}
	return &Session{opts: opts, logger: opts.Logger}
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

func (s *Session) setState(st State) {
	if s.state == st {
		return
	}
	s.logger.Debug("state", "from", s.state, "to", st)
	s.state = st
	if s.opts.OnState != nil {
		s.opts.OnState(st)
	}
}

// Run connects and loops over user turns until the user quits.
// It returns an error only when the connection could not be established.
func (s *Session) Run(ctx context.Context) error {
	defer s.terminate()

	if err := s.connect(ctx); err != nil {
		return err
	}
	s.showWelcome()

	for {
		s.setState(StateAwaitingInput)
		message, err := s.opts.Input.ReadLogicalLine()
		switch {
		case errors.Is(err, input.ErrLineAborted):
			continue
		case errors.Is(err, input.ErrInterrupted), errors.Is(err, io.EOF):
			s.showGoodbye()
			return nil
		case err != nil:
			return fmt.Errorf("%w: %w", ErrInput, err)
		}

		trimmed := strings.TrimSpace(message)
		if IsQuitCommand(trimmed) {
			s.showGoodbye()
			return nil
		}
		if trimmed == "" {
			continue
		}

		stop, err := s.turn(ctx, message)
		if err != nil {
			s.showTurnError(err)
		}
		if stop || ctx.Err() != nil {
			s.showGoodbye()
			return nil
		}
	}
}

// RunOnce connects, sends one message, shows the reply and returns.
func (s *Session) RunOnce(ctx context.Context, message string) error {
	defer s.terminate()

	if err := s.connect(ctx); err != nil {
		return err
	}

	stop, err := s.turn(ctx, message)
	if err != nil {
		s.showTurnError(err)
		return err
	}
	if stop {
		return ErrTurnInterrupted
	}
	return nil
}

// IsQuitCommand reports whether input, already trimmed, asks to leave.
func IsQuitCommand(input string) bool {
	switch strings.ToLower(input) {
	case "quit", "exit", "q":
		return true
	}
	return false
}

// connect probes the API and opens a session. Any failure is reported and
// returned; there is no retry.
func (s *Session) connect(ctx context.Context) error {
	s.setState(StateAwaitingConnection)
	s.println(dimStyle("Connecting to Specsmith API..."))

	if err := s.opts.API.TestConnection(ctx); err != nil {
		s.showConnectError(err)
		return err
	}
	id, err := s.opts.API.CreateSession(ctx)
	if err != nil {
		s.showConnectError(err)
		return err
	}

	s.sessionID = id
	s.logger.Debug("connected", "session", id)
	s.println(successLine("Connected to Specsmith API"))
	s.setState(StateConnected)
	return nil
}

// terminate releases the client. It runs on every exit path.
func (s *Session) terminate() {
	s.setState(StateTerminated)
	if err := s.opts.API.Close(); err != nil {
		s.logger.Debug("closing client", "err", err)
	}
}

// =============================================================================
// TURN
// =============================================================================

// turn sends one message, streams the reply and flushes queued file saves.
// stop reports that the user interrupted and the session should end.
func (s *Session) turn(ctx context.Context, message string) (stop bool, err error) {
	s.setState(StateSending)
	s.showUserMessage(message)

	turnCtx, cancel := s.opts.InterruptContext(ctx)
	defer cancel()

	stream, err := s.opts.API.SendMessage(turnCtx, s.sessionID, message)
	if err != nil {
		if turnCtx.Err() != nil {
			s.println(dimStyle("Interrupted."))
			return true, nil
		}
		return false, err
	}
	defer stream.Close()

	s.setState(StateStreaming)
	live := s.opts.StartLive()
	d := newDispatcher(live, s.opts.Verbose, s.logger)

	var streamErr error
	for action, err := range stream.All() {
		if err != nil {
			streamErr = err
			break
		}
		d.dispatch(action)
	}
	if err := live.Close(); err != nil {
		s.logger.Debug("closing live region", "err", err)
	}

	// Nothing queued before an interrupt or failure is flushed.
	if turnCtx.Err() != nil {
		s.logger.Debug("turn interrupted", "dropped_saves", len(d.pending))
		s.println(dimStyle("Interrupted."))
		return true, nil
	}
	if streamErr != nil {
		return false, streamErr
	}

	s.setState(StateFlushingFileActions)
	if err := s.flush(d.pending); err != nil {
		if errors.Is(err, input.ErrInterrupted) || errors.Is(err, io.EOF) {
			return true, nil
		}
		return false, err
	}
	s.println("")
	return false, nil
}

// flush offers each queued file in order. Only an interrupted prompt stops it.
func (s *Session) flush(pending []PendingFileSave) error {
	for _, p := range pending {
		if err := s.offerSave(p); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) offerSave(p PendingFileSave) error {
	s.logger.Debug("file action", "filename", p.Filename, "content_len", len(p.Content))
	if p.Filename == "" || p.Content == "" {
		s.logger.Debug("missing filename or content, skipping")
		return nil
	}

	path, err := ValidateFilename(p.Filename)
	if err != nil {
		s.println(warningLine(fmt.Sprintf("Refusing to save %q: %v", p.Filename, err)))
		return nil
	}

	var (
		question   string
		defaultYes bool
	)
	if s.opts.Files.Exists(path) {
		question = fmt.Sprintf("Before we continue, would you like to overwrite '%s'?", p.Filename)
	} else {
		question = fmt.Sprintf("Before we continue, would you like to save file '%s' (%s)?", p.Filename, describeContent(p.Content))
		defaultYes = true
	}

	if s.opts.Prompter == nil {
		s.println(warningLine("Skipped saving " + p.Filename + " (no terminal to confirm)"))
		return nil
	}

	s.println("")
	ok, err := s.opts.Prompter.Confirm(question, defaultYes)
	if err != nil {
		return err
	}
	if !ok {
		s.println(warningLine("Skipped saving " + p.Filename))
		return nil
	}

	if err := s.opts.Files.WriteAll(path, p.Content); err != nil {
		s.println(errorLine(fmt.Sprintf("Failed to save %s: %v", p.Filename, err)))
		return nil
	}
	s.println(successLine("Saved " + p.Filename))
	return nil
}

func (s *Session) println(line string) {
	fmt.Fprintln(s.opts.Out, line)
}

// Compile-time check that the render package satisfies LiveRegion.
var _ LiveRegion = (*render.Live)(nil)
