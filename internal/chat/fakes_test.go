// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/jeranaias/specsmith-cli/internal/agent"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// eventLog records the order of observable side effects across fakes.
type eventLog struct {
	events []string
}

func (l *eventLog) add(e string) { l.events = append(l.events, e) }

func (l *eventLog) index(prefix string) int {
	for i, e := range l.events {
		if strings.HasPrefix(e, prefix) {
			return i
		}
	}
	return -1
}

// fakeAPI serves scripted replies.
type fakeAPI struct {
	log       *eventLog
	testErr   error
	createErr error
	replies   []reply
	sent      []string
	closed    int
}

type reply struct {
	body string
	err  error
}

func (f *fakeAPI) TestConnection(context.Context) error { return f.testErr }

func (f *fakeAPI) CreateSession(context.Context) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return "sess-1", nil
}

func (f *fakeAPI) SendMessage(ctx context.Context, id, text string) (*agent.Stream, error) {
	f.sent = append(f.sent, text)
	if f.log != nil {
		f.log.add("send:" + text)
	}
	if len(f.replies) == 0 {
		return agent.NewStream(io.NopCloser(strings.NewReader("")), nil), nil
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	if r.err != nil {
		return nil, r.err
	}
	return agent.NewStream(io.NopCloser(strings.NewReader(r.body)), nil), nil
}

func (f *fakeAPI) Close() error {
	f.closed++
	return nil
}

// fakeInput returns scripted lines, then io.EOF.
type fakeInput struct {
	answers []any
	reads   int
}

func (f *fakeInput) ReadLogicalLine() (string, error) {
	f.reads++
	if len(f.answers) == 0 {
		return "", io.EOF
	}
	next := f.answers[0]
	f.answers = f.answers[1:]
	if err, ok := next.(error); ok {
		return "", err
	}
	return next.(string), nil
}

// fakePrompter answers confirmations from a script.
type fakePrompter struct {
	log       *eventLog
	answers   []any // bool or error
	questions []string
	defaults  []bool
}

func (f *fakePrompter) Confirm(question string, defaultYes bool) (bool, error) {
	f.questions = append(f.questions, question)
	f.defaults = append(f.defaults, defaultYes)
	if f.log != nil {
		f.log.add("confirm:" + question)
	}
	if len(f.answers) == 0 {
		return defaultYes, nil
	}
	next := f.answers[0]
	f.answers = f.answers[1:]
	if err, ok := next.(error); ok {
		return false, err
	}
	return next.(bool), nil
}

// memFiles is an in-memory Files.
type memFiles struct {
	files    map[string]string
	failFor  map[string]bool
	attempts []string
}

func newMemFiles() *memFiles {
	return &memFiles{files: map[string]string{}, failFor: map[string]bool{}}
}

func (m *memFiles) Exists(path string) bool {
	_, ok := m.files[path]
	return ok
}

func (m *memFiles) WriteAll(path, content string) error {
	m.attempts = append(m.attempts, path)
	if m.failFor[path] {
		return errors.New("disk full")
	}
	m.files[path] = content
	return nil
}

// recordingLive records what a reply displayed.
type recordingLive struct {
	log      *eventLog
	updates  []string
	lines    []string
	closed   int
	onUpdate func()
}

func (r *recordingLive) Update(md string) {
	r.updates = append(r.updates, md)
	r.log.add("update:" + md)
	if r.onUpdate != nil {
		r.onUpdate()
	}
}

func (r *recordingLive) Println(line string) {
	r.lines = append(r.lines, line)
	r.log.add("println:" + line)
}

func (r *recordingLive) Close() error {
	r.closed++
	r.log.add("close")
	return nil
}

func (r *recordingLive) final() string {
	if len(r.updates) == 0 {
		return ""
	}
	return r.updates[len(r.updates)-1]
}

// harness wires a Session to fakes.
type harness struct {
	log      *eventLog
	api      *fakeAPI
	input    *fakeInput
	prompter *fakePrompter
	files    *memFiles
	out      *bytes.Buffer
	lives    []*recordingLive
	states   []State
	verbose  bool
	// interrupt, when set, is used as the reply context's cancel trigger.
	interrupt context.CancelFunc
	onUpdate  func(h *harness)
}

func newHarness(replies ...reply) *harness {
	log := &eventLog{}
	return &harness{
		log:      log,
		api:      &fakeAPI{log: log, replies: replies},
		input:    &fakeInput{},
		prompter: &fakePrompter{log: log},
		files:    newMemFiles(),
		out:      &bytes.Buffer{},
	}
}

func (h *harness) session() *Session {
	return NewSession(Options{
		API:      h.api,
		Input:    h.input,
		Prompter: h.prompter,
		Files:    h.files,
		Out:      h.out,
		Verbose:  h.verbose,
		StartLive: func() LiveRegion {
			live := &recordingLive{log: h.log}
			if h.onUpdate != nil {
				live.onUpdate = func() { h.onUpdate(h) }
			}
			h.lives = append(h.lives, live)
			h.log.add("live")
			return live
		},
		InterruptContext: func(ctx context.Context) (context.Context, context.CancelFunc) {
			ctx, cancel := context.WithCancel(ctx)
			h.interrupt = cancel
			return ctx, cancel
		},
		OnState: func(s State) { h.states = append(h.states, s) },
	})
}

func lines(objs ...string) string {
	return strings.Join(objs, "\n") + "\n"
}
