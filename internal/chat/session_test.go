// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/specsmith-cli/internal/agent"
	"github.com/jeranaias/specsmith-cli/internal/input"
)

const (
	helloWorldReply = `{"type":"message","content":"Hello "}` + "\n" +
		`{"type":"message","content":"World"}` + "\n" +
		`{"type":"tool_use","description":"searching"}` + "\n"

	fileReply = `{"type":"message","content":"Here it is."}` + "\n" +
		`{"type":"file","filename":"out.txt","content":"X"}` + "\n"
)

// =============================================================================
// STREAMING
// =============================================================================

func TestRun_HelloWorldThenToolNotice(t *testing.T) {
	h := newHarness(reply{body: helloWorldReply})
	h.input.answers = []any{"hi"}

	require.NoError(t, h.session().Run(context.Background()))

	require.Len(t, h.lives, 1)
	live := h.lives[0]
	assert.Equal(t, "Hello World", live.final())
	require.Len(t, live.lines, 1, "exactly one tool notice")
	assert.Equal(t, "( searching )…", live.lines[0])

	// The notice follows the message updates and precedes close.
	lastUpdate := h.log.index("update:Hello World")
	notice := h.log.index("println:( searching )")
	closed := h.log.index("close")
	assert.Less(t, lastUpdate, notice)
	assert.Less(t, notice, closed)
	assert.Equal(t, 1, live.closed)
}

func TestRun_StateSequence(t *testing.T) {
	h := newHarness(reply{body: fileReply})
	h.input.answers = []any{"make a file"}
	h.prompter.answers = []any{true}

	require.NoError(t, h.session().Run(context.Background()))

	assert.Equal(t, []State{
		StateAwaitingConnection,
		StateConnected,
		StateAwaitingInput,
		StateSending,
		StateStreaming,
		StateFlushingFileActions,
		StateAwaitingInput,
		StateTerminated,
	}, h.states)
	assert.Equal(t, 1, h.api.closed)
}

func TestRun_MarkdownNormalizedAcrossDeltas(t *testing.T) {
	body := lines(
		`{"type":"message","content":"Intro\n"}`,
		`{"type":"message","content":"    indented prose\n"}`,
		`{"type":"message","content":"    - nested item"}`,
	)
	h := newHarness(reply{body: body})
	h.input.answers = []any{"go"}

	require.NoError(t, h.session().Run(context.Background()))
	assert.Equal(t, "Intro\nindented prose\n    - nested item", h.lives[0].final())
}

func TestRun_NonTextActions(t *testing.T) {
	body := lines(
		`{"type":"limit_message","content":"3 messages left today"}`,
		`{"type":"limit_message","content":""}`,
		`{"type":"user_action","action":{"type":"tag_created","tag":"v1.0","message":"release"}}`,
		`{"type":"user_action","action":{"type":"error","operation":"create tag","message":"exists"}}`,
		`{"type":"tool_use","tool_name":"grep"}`,
		`{"type":"tool_use"}`,
		`{"type":"mystery","x":1}`,
		`not json at all`,
	)

	t.Run("quiet", func(t *testing.T) {
		h := newHarness(reply{body: body})
		h.input.answers = []any{"go"}
		require.NoError(t, h.session().Run(context.Background()))

		assert.Equal(t, []string{
			"3 messages left today",
			"[OK] Created tag v1.0: release",
			"[X] create tag failed: exists",
			"( grep )…",
			"( tool )…",
		}, h.lives[0].lines)
	})

	t.Run("verbose echoes unknown", func(t *testing.T) {
		h := newHarness(reply{body: body})
		h.verbose = true
		h.input.answers = []any{"go"}
		require.NoError(t, h.session().Run(context.Background()))

		got := h.lives[0].lines
		require.Len(t, got, 6)
		assert.Contains(t, got[5], `Unknown action type "mystery"`)
	})
}

// =============================================================================
// FILE SAVES
// =============================================================================

func TestRun_FileProposalAccepted(t *testing.T) {
	h := newHarness(reply{body: fileReply})
	h.input.answers = []any{"make a file"}
	h.prompter.answers = []any{true}

	require.NoError(t, h.session().Run(context.Background()))

	assert.Equal(t, "X", h.files.files["out.txt"])
	require.Len(t, h.prompter.questions, 1)
	assert.Contains(t, h.prompter.questions[0], "save file 'out.txt' (1 chars, 1 lines)")
	assert.True(t, h.prompter.defaults[0], "save defaults to yes")
	assert.Contains(t, h.out.String(), "[OK] Saved out.txt")

	// The prompt only appears once the live region is closed.
	assert.Less(t, h.log.index("close"), h.log.index("confirm:"))
}

func TestRun_FileProposalDeclined(t *testing.T) {
	h := newHarness(reply{body: fileReply})
	h.input.answers = []any{"make a file"}
	h.prompter.answers = []any{false}

	require.NoError(t, h.session().Run(context.Background()))

	assert.Empty(t, h.files.files)
	assert.Empty(t, h.files.attempts)
	assert.Contains(t, h.out.String(), "[!] Skipped saving out.txt")
}

func TestRun_ExistingFileAsksOverwriteDefaultNo(t *testing.T) {
	h := newHarness(reply{body: fileReply})
	h.files.files["out.txt"] = "old"
	h.input.answers = []any{"make a file"}

	require.NoError(t, h.session().Run(context.Background()))

	require.Len(t, h.prompter.questions, 1)
	assert.Contains(t, h.prompter.questions[0], "overwrite 'out.txt'")
	assert.False(t, h.prompter.defaults[0])
	assert.Equal(t, "old", h.files.files["out.txt"], "default answer keeps the file")
}

func TestRun_FileQueueOrderAndFailures(t *testing.T) {
	body := lines(
		`{"type":"file","filename":"a.txt","content":"A"}`,
		`{"type":"message","content":"between"}`,
		`{"type":"user_action","action":{"type":"file_saved","filename":"b.txt","content":"B"}}`,
		`{"type":"file","filename":"../escape.txt","content":"no"}`,
		`{"type":"file","filename":"/etc/passwd","content":"no"}`,
		`{"type":"file","filename":"empty.txt","content":""}`,
		`{"type":"file","filename":"c/d.txt","content":"D\nE\n"}`,
	)
	h := newHarness(reply{body: body})
	h.files.failFor["b.txt"] = true
	h.input.answers = []any{"files please"}

	require.NoError(t, h.session().Run(context.Background()))

	assert.Equal(t, []string{"a.txt", "b.txt", "c/d.txt"}, h.files.attempts)
	assert.Equal(t, "A", h.files.files["a.txt"])
	assert.Equal(t, "D\nE\n", h.files.files["c/d.txt"])
	assert.Contains(t, h.prompter.questions[2], "(4 chars, 2 lines)")

	out := h.out.String()
	assert.Contains(t, out, "[X] Failed to save b.txt: disk full")
	assert.Contains(t, out, `Refusing to save "../escape.txt"`)
	assert.Contains(t, out, `Refusing to save "/etc/passwd"`)
	assert.NotContains(t, out, "empty.txt")
}

func TestRun_InterruptDuringSavePromptTerminates(t *testing.T) {
	body := lines(
		`{"type":"file","filename":"a.txt","content":"A"}`,
		`{"type":"file","filename":"b.txt","content":"B"}`,
	)
	h := newHarness(reply{body: body})
	h.input.answers = []any{"files", "never read"}
	h.prompter.answers = []any{input.ErrInterrupted}

	require.NoError(t, h.session().Run(context.Background()))

	assert.Len(t, h.prompter.questions, 1, "remaining queue dropped")
	assert.Empty(t, h.files.files)
	assert.Equal(t, 1, h.input.reads)
	assert.Equal(t, StateTerminated, h.states[len(h.states)-1])
}

// =============================================================================
// INPUT HANDLING
// =============================================================================

func TestRun_QuitKeywords(t *testing.T) {
	for _, word := range []string{"quit", "Exit", "Q", "  q  ", "QUIT"} {
		t.Run(word, func(t *testing.T) {
			h := newHarness()
			h.input.answers = []any{word, "should not be read"}
			require.NoError(t, h.session().Run(context.Background()))
			assert.Empty(t, h.api.sent)
			assert.Equal(t, 1, h.input.reads)
			assert.Contains(t, h.out.String(), "Goodbye!")
		})
	}
}

func TestRun_QuitterIsAMessage(t *testing.T) {
	h := newHarness()
	h.input.answers = []any{"quitter", "please quit"}
	require.NoError(t, h.session().Run(context.Background()))
	assert.Equal(t, []string{"quitter", "please quit"}, h.api.sent)
}

func TestIsQuitCommand(t *testing.T) {
	assert.True(t, IsQuitCommand("quit"))
	assert.True(t, IsQuitCommand("eXiT"))
	assert.False(t, IsQuitCommand("quitter"))
	assert.False(t, IsQuitCommand("q!"))
	assert.False(t, IsQuitCommand(""))
}

func TestRun_BlankAndAbortedLinesLoop(t *testing.T) {
	h := newHarness()
	h.input.answers = []any{"", "   \n  ", input.ErrLineAborted, "real"}
	require.NoError(t, h.session().Run(context.Background()))
	assert.Equal(t, []string{"real"}, h.api.sent)
	assert.Equal(t, 5, h.input.reads, "four answers then EOF")
}

func TestRun_InterruptAtPromptTerminates(t *testing.T) {
	h := newHarness()
	h.input.answers = []any{input.ErrInterrupted, "unreachable"}
	require.NoError(t, h.session().Run(context.Background()))
	assert.Empty(t, h.api.sent)
	assert.Equal(t, 1, h.api.closed)
}

func TestRun_MultiLineMessageEcho(t *testing.T) {
	h := newHarness()
	h.input.answers = []any{"line one\nline two"}
	require.NoError(t, h.session().Run(context.Background()))

	assert.Equal(t, []string{"line one\nline two"}, h.api.sent)
	out := h.out.String()
	assert.Contains(t, out, "> line one")
	assert.Contains(t, out, "  line two")
}

// =============================================================================
// FAILURES
// =============================================================================

func TestRun_ConnectionFailureIsFatal(t *testing.T) {
	tests := []struct {
		name  string
		api   *fakeAPI
		title string
	}{
		{"auth probe", &fakeAPI{testErr: agent.ErrAuth}, "Authentication Error"},
		{"unreachable", &fakeAPI{testErr: agent.ErrConnection}, "Connection Error"},
		{"create session", &fakeAPI{createErr: &agent.ClientError{Type: agent.ErrTypeAPI, Status: 500}}, "API Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()
			h.api = tt.api
			h.input.answers = []any{"hello"}

			err := h.session().Run(context.Background())
			require.Error(t, err)
			assert.Zero(t, h.input.reads, "no input before connecting")
			assert.Equal(t, 1, tt.api.closed)
			assert.Equal(t, StateTerminated, h.states[len(h.states)-1])
			assert.NotContains(t, h.states, StateConnected)
			assert.Contains(t, h.out.String(), "Failed to connect to Specsmith API")
			assert.Contains(t, h.out.String(), tt.title)
		})
	}
}

func TestRun_TurnFailureContinues(t *testing.T) {
	h := newHarness(
		reply{err: &agent.ClientError{Type: agent.ErrTypeAPI, Status: 502, Body: "upstream stack trace"}},
		reply{body: helloWorldReply},
	)
	h.input.answers = []any{"first", "second"}

	require.NoError(t, h.session().Run(context.Background()))

	assert.Equal(t, []string{"first", "second"}, h.api.sent)
	out := h.out.String()
	assert.Contains(t, out, "[X] API Error")
	assert.NotContains(t, out, "upstream stack trace")
	require.Len(t, h.lives, 1, "failed send never opened a live region")
	assert.Equal(t, "Hello World", h.lives[0].final())
}

func TestRun_InterruptDuringStreamingDropsPendingSaves(t *testing.T) {
	h := newHarness(reply{body: fileReply})
	h.input.answers = []any{"make a file", "never read"}
	h.onUpdate = func(h *harness) { h.interrupt() }

	require.NoError(t, h.session().Run(context.Background()))

	assert.Empty(t, h.prompter.questions, "no save prompt after interrupt")
	assert.Empty(t, h.files.files)
	assert.Equal(t, 1, h.input.reads)
	assert.Equal(t, 1, h.lives[0].closed)
	assert.Equal(t, 1, h.api.closed)
	assert.NotContains(t, h.states, StateFlushingFileActions)
	assert.Contains(t, h.out.String(), "Interrupted.")
}

// =============================================================================
// SINGLE MESSAGE MODE
// =============================================================================

func TestRunOnce(t *testing.T) {
	h := newHarness(reply{body: fileReply})
	h.prompter.answers = []any{true}

	require.NoError(t, h.session().RunOnce(context.Background(), "one shot"))

	assert.Equal(t, []string{"one shot"}, h.api.sent)
	assert.Zero(t, h.input.reads)
	assert.Equal(t, "X", h.files.files["out.txt"])
	assert.Equal(t, 1, h.api.closed)
	assert.NotContains(t, h.out.String(), "Welcome")
}

func TestRunOnce_TurnErrorReturned(t *testing.T) {
	h := newHarness(reply{err: agent.ErrNotFound})
	err := h.session().RunOnce(context.Background(), "hi")
	assert.True(t, errors.Is(err, agent.ErrNotFound))
	assert.Contains(t, h.out.String(), "Session Error")
	assert.Equal(t, 1, h.api.closed)
}

func TestRunOnce_NoPrompterSkipsSaves(t *testing.T) {
	h := newHarness(reply{body: fileReply})
	s := h.session()
	s.opts.Prompter = nil

	require.NoError(t, s.RunOnce(context.Background(), "hi"))
	assert.Empty(t, h.files.files)
	assert.Contains(t, h.out.String(), "Skipped saving out.txt")
}

func TestRun_WelcomeShownOnce(t *testing.T) {
	h := newHarness(reply{body: helloWorldReply}, reply{body: helloWorldReply})
	h.input.answers = []any{"a", "b"}
	require.NoError(t, h.session().Run(context.Background()))
	assert.Equal(t, 1, strings.Count(h.out.String(), "Welcome to Specsmith Agent!"))
}

func TestRun_ReadErrorReturned(t *testing.T) {
	h := newHarness()
	h.input.answers = []any{io.ErrUnexpectedEOF}
	err := h.session().Run(context.Background())
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.Equal(t, 1, h.api.closed)
}
