// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package agent is the HTTP client for the Specsmith Agent API.

It opens chat sessions and turns the newline-delimited JSON body of a message
response into an ordered sequence of typed Action values.

# Key Types

  - Client: health, auth and session endpoints; safe for concurrent use
  - Stream: lazy, ordered decoder over one streamed reply
  - Action: sealed interface implemented by Message, FileProposal, ToolUse,
    LimitNotice, UserActionResult and Unknown
  - ClientError: typed failure carrying an ErrorType and HTTP status

# Wire Protocol

	GET  {base}/agent/health                 200 when alive
	GET  {base}/agent/auth                   200 when credentials are valid
	POST {base}/agent/session                {} -> {"session_id": "..."}
	POST {base}/agent/session/{id}/message   {"content": "..."} -> NDJSON stream

Each stream line is an object with a "type" field. Lines that fail to decode
are skipped and only logged at debug level.

# Usage

	client := agent.NewClient(cfg, agent.WithLogger(logger))
	defer client.Close()

	if err := client.TestConnection(ctx); err != nil {
	    return err
	}
	id, err := client.CreateSession(ctx)
	if err != nil {
	    return err
	}
	stream, err := client.SendMessage(ctx, id, "hello")
	if err != nil {
	    return err
	}
	for action, err := range stream.All() {
	    if err != nil {
	        return err
	    }
	    switch a := action.(type) {
	    case agent.Message:
	        fmt.Print(a.Content)
	    }
	}

# Errors

Classify maps any error to a user-facing Category and FriendlyMessage gives
the fixed text shown for it. Raw server bodies are never part of that text
unless verbose output was requested.
*/
package agent
