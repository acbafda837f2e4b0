// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat runs the interactive turn loop against the agent API.

A Session walks a fixed set of states:

	IDLE -> AWAITING_CONNECTION -> CONNECTED -> AWAITING_INPUT
	     -> SENDING -> STREAMING -> FLUSHING_FILE_ACTIONS -> AWAITING_INPUT ...
	                                                      \-> TERMINATED

Input capture and streaming never overlap. File proposals that arrive while
a reply is streaming are queued and only offered to the user once the live
region has closed, so a blocking prompt never competes with the repainting
frame. A failed turn is reported and the loop continues; a failed connection
ends the session. The API client is closed on every exit path.

# Collaborators

All terminal and network access goes through small interfaces (API, Input,
Prompter, Files, LiveRegion) so the loop can be driven from tests with
scripted fakes.
*/
package chat
