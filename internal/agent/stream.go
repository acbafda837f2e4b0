// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"iter"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/jeranaias/specsmith-cli/internal/logging"
)

// maxLoggedLine bounds how much of a malformed line reaches the debug log.
const maxLoggedLine = 200

// =============================================================================
// STREAM
// =============================================================================

// Stream decodes one streamed reply into Actions, in arrival order.
//
// Lines are only decoded once complete, so the result does not depend on how
// the network split the body. A final line without a trailing newline is
// still decoded at end of stream.
//
// A Stream is not safe for concurrent use, except that Close may be called
// from any goroutine.
type Stream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	logger *log.Logger
	// ctx is the request context; its error wins over the read error it causes.
	ctx context.Context

	// skipped throttles debug logging of malformed lines on noisy streams.
	skipped rate.Sometimes
	skips   int

	closeOnce sync.Once
	closed    chan struct{}
}

// NewStream wraps body. A nil logger discards diagnostics.
func NewStream(body io.ReadCloser, logger *log.Logger) *Stream {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Stream{
		body:    body,
		reader:  bufio.NewReader(body),
		logger:  logger,
		ctx:     context.Background(),
		skipped: rate.Sometimes{First: 3, Interval: time.Second},
		closed:  make(chan struct{}),
	}
}

// Next blocks until the next decodable Action is available.
// It returns io.EOF once the stream is exhausted or closed.
func (s *Stream) Next() (Action, error) {
	for {
		select {
		case <-s.closed:
			return nil, io.EOF
		default:
		}

		line, readErr := s.reader.ReadBytes('\n')
		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			action, err := Decode(trimmed)
			if err == nil {
				return action, nil
			}
			s.logSkip(trimmed, err)
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return nil, io.EOF
			}
			select {
			case <-s.closed:
				return nil, io.EOF
			default:
			}
			if err := s.ctx.Err(); errors.Is(err, context.Canceled) {
				return nil, err
			}
			return nil, transportError("reading response stream", readErr)
		}
	}
}

// All returns an iterator over the remaining Actions. The stream is closed
// when iteration ends, including when the caller breaks out early. A read
// error is yielded once as the final element.
func (s *Stream) All() iter.Seq2[Action, error] {
	return func(yield func(Action, error) bool) {
		defer s.Close()
		for {
			action, err := s.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(action, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains the stream into a slice.
func (s *Stream) Collect() ([]Action, error) {
	var actions []Action
	for action, err := range s.All() {
		if err != nil {
			return actions, err
		}
		actions = append(actions, action)
	}
	return actions, nil
}

// Skipped returns how many non-empty lines failed to decode so far.
func (s *Stream) Skipped() int {
	return s.skips
}

// Close releases the underlying connection. Safe to call more than once.
func (s *Stream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closed)
		err = s.body.Close()
	})
	return err
}

func (s *Stream) logSkip(line []byte, err error) {
	s.skips++
	s.skipped.Do(func() {
		shown := line
		if len(shown) > maxLoggedLine {
			shown = shown[:maxLoggedLine]
		}
		s.logger.Debug("skipping malformed stream line", "line", string(shown), "err", err, "skipped", s.skips)
	})
}
