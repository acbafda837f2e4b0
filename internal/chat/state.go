// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// State is a phase of the chat loop.
type State int

const (
	StateIdle State = iota
	StateAwaitingConnection
	StateConnected
	StateAwaitingInput
	StateSending
	StateStreaming
	StateFlushingFileActions
	StateTerminated
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateAwaitingConnection:
		return "AWAITING_CONNECTION"
	case StateConnected:
		return "CONNECTED"
	case StateAwaitingInput:
		return "AWAITING_INPUT"
	case StateSending:
		return "SENDING"
	case StateStreaming:
		return "STREAMING"
	case StateFlushingFileActions:
		return "FLUSHING_FILE_ACTIONS"
	case StateTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}
