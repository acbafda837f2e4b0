// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Action type tags as they appear on the wire.
const (
	TypeMessage      = "message"
	TypeFile         = "file"
	TypeToolUse      = "tool_use"
	TypeLimitMessage = "limit_message"
	TypeUserAction   = "user_action"
)

// Result type tags nested inside a user_action event.
const (
	ResultFileSaved  = "file_saved"
	ResultTagCreated = "tag_created"
	ResultError      = "error"
)

// =============================================================================
// ACTIONS
// =============================================================================

// Action is one decoded event of a streamed reply.
// The set of implementations is closed; switch on the concrete type.
type Action interface {
	// Type returns the wire tag of the event.
	Type() string
	isAction()
}

// Message is a text delta to append to the current response.
type Message struct {
	Content string `json:"content"`
}

// FileProposal is a candidate file write. Content is the complete file body.
type FileProposal struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// ToolUse announces an in-progress side operation. Both fields are optional.
type ToolUse struct {
	Description string `json:"description,omitempty"`
	ToolName    string `json:"tool_name,omitempty"`
}

// LimitNotice is an informational or rate-limit message.
type LimitNotice struct {
	Content string `json:"content"`
}

// UserActionResult reports the outcome of an operation performed for the user.
type UserActionResult struct {
	Result UserAction
}

// Unknown is any event with an unrecognised tag. Raw holds the original line.
type Unknown struct {
	Tag string
	Raw json.RawMessage
}

func (Message) Type() string          { return TypeMessage }
func (FileProposal) Type() string     { return TypeFile }
func (ToolUse) Type() string          { return TypeToolUse }
func (LimitNotice) Type() string      { return TypeLimitMessage }
func (UserActionResult) Type() string { return TypeUserAction }
func (u Unknown) Type() string        { return u.Tag }

func (Message) isAction()          {}
func (FileProposal) isAction()     {}
func (ToolUse) isAction()          {}
func (LimitNotice) isAction()      {}
func (UserActionResult) isAction() {}
func (Unknown) isAction()          {}

// =============================================================================
// USER ACTION RESULTS
// =============================================================================

// UserAction is the nested payload of a user_action event.
type UserAction interface {
	Kind() string
	isUserAction()
}

// FileSaved carries a file the service produced for the user to keep.
type FileSaved struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// TagCreated reports a newly created tag.
type TagCreated struct {
	Tag     string `json:"tag"`
	Message string `json:"message,omitempty"`
}

// ActionError reports a failed operation. It does not end the turn.
type ActionError struct {
	Operation string `json:"operation"`
	Message   string `json:"message"`
}

func (FileSaved) Kind() string   { return ResultFileSaved }
func (TagCreated) Kind() string  { return ResultTagCreated }
func (ActionError) Kind() string { return ResultError }

func (FileSaved) isUserAction()   {}
func (TagCreated) isUserAction()  {}
func (ActionError) isUserAction() {}

// =============================================================================
// DECODING
// =============================================================================

// envelope holds the fields every variant may read.
type envelope struct {
	Type   string          `json:"type"`
	Action json.RawMessage `json:"action,omitempty"`
}

var errNotObject = errors.New("decode action: not a JSON object")

// Decode parses a single stream line. It fails only when the line is not a
// JSON object; unrecognised tags decode to Unknown.
func Decode(line []byte) (Action, error) {
	if trimmed := bytes.TrimSpace(line); len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, errNotObject
	}
	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("decode action: %w", err)
	}

	raw := json.RawMessage(append([]byte(nil), line...))

	switch env.Type {
	case TypeMessage:
		return decodeAs[Message](line)
	case TypeFile:
		return decodeAs[FileProposal](line)
	case TypeToolUse:
		return decodeAs[ToolUse](line)
	case TypeLimitMessage:
		return decodeAs[LimitNotice](line)
	case TypeUserAction:
		result, ok := decodeUserAction(env.Action)
		if !ok {
			return Unknown{Tag: env.Type, Raw: raw}, nil
		}
		return UserActionResult{Result: result}, nil
	default:
		return Unknown{Tag: env.Type, Raw: raw}, nil
	}
}

// decodeAs re-reads line as T. The envelope already proved the line is an
// object, so a failure here means a field has the wrong JSON type.
func decodeAs[T Action](line []byte) (Action, error) {
	var v T
	if err := json.Unmarshal(line, &v); err != nil {
		return nil, fmt.Errorf("decode %s fields: %w", v.Type(), err)
	}
	return v, nil
}

func decodeUserAction(payload json.RawMessage) (UserAction, bool) {
	if len(payload) == 0 {
		return nil, false
	}
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(payload, &head); err != nil {
		return nil, false
	}

	var (
		result UserAction
		err    error
	)
	switch head.Type {
	case ResultFileSaved:
		var v FileSaved
		err = json.Unmarshal(payload, &v)
		result = v
	case ResultTagCreated:
		var v TagCreated
		err = json.Unmarshal(payload, &v)
		result = v
	case ResultError:
		var v ActionError
		err = json.Unmarshal(payload, &v)
		result = v
	default:
		return nil, false
	}
	if err != nil {
		return nil, false
	}
	return result, true
}
