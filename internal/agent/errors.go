// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeConnection
	ErrTypeTimeout
	ErrTypeAuth
	ErrTypeNotFound
	ErrTypeOverloaded
	ErrTypeAPI
	ErrTypeInvalidResponse
)

// String returns a short name for the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeConnection:
		return "connection"
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeAuth:
		return "auth"
	case ErrTypeNotFound:
		return "not_found"
	case ErrTypeOverloaded:
		return "overloaded"
	case ErrTypeAPI:
		return "api"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// ClientError represents an error from the agent client.
type ClientError struct {
	Type ErrorType
	// Status is the HTTP status code, or zero when no response was received.
	Status  int
	Message string
	// Body is the (truncated) response body. Never shown outside verbose mode.
	Body  string
	Cause error
}

func (e *ClientError) Error() string {
	msg := e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Is matches another *ClientError of the same Type, so sentinels work with
// errors.Is regardless of message or status.
func (e *ClientError) Is(target error) bool {
	var t *ClientError
	if !errors.As(target, &t) {
		return false
	}
	return t.Type == e.Type
}

// Sentinel errors for easy checking.
var (
	ErrConnection      = &ClientError{Type: ErrTypeConnection, Message: "unable to reach the agent API"}
	ErrTimeout         = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrAuth            = &ClientError{Type: ErrTypeAuth, Message: "authentication failed"}
	ErrNotFound        = &ClientError{Type: ErrTypeNotFound, Message: "not found"}
	ErrOverloaded      = &ClientError{Type: ErrTypeOverloaded, Message: "service overloaded"}
	ErrInvalidResponse = &ClientError{Type: ErrTypeInvalidResponse, Message: "invalid response"}
)

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool {
	return errors.Is(err, ErrAuth)
}

// IsTimeout reports whether err is a timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, ErrTimeout)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// transportError wraps a failure of http.Client.Do or of a body read.
// Cancellation is returned unwrapped so callers can test for it directly.
func transportError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &ClientError{Type: ErrTypeTimeout, Message: op + " timed out", Cause: err}
	}
	return &ClientError{Type: ErrTypeConnection, Message: op + " failed", Cause: err}
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Category is the user-facing error taxonomy.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryConnection
	CategoryAuthentication
	CategorySession
	CategoryServiceOverloaded
	CategoryAPI
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryConnection:
		return "ConnectionError"
	case CategoryAuthentication:
		return "AuthenticationError"
	case CategorySession:
		return "SessionError"
	case CategoryServiceOverloaded:
		return "ServiceOverloadedError"
	case CategoryAPI:
		return "ApiError"
	default:
		return "UnknownError"
	}
}

// keywordRules classify errors that did not come from this package.
// Order matters: the first matching rule wins.
var keywordRules = []struct {
	category Category
	terms    []string
}{
	{CategoryConnection, []string{"connection", "timeout", "network", "unreachable"}},
	{CategoryAuthentication, []string{"401", "unauthorized", "invalid credentials", "authentication"}},
	{CategorySession, []string{"404", "not found", "session"}},
	{CategoryServiceOverloaded, []string{"overloaded", "high demand", "busy", "rate limit"}},
	{CategoryAPI, []string{"500", "502", "503", "504", "server error"}},
}

// Classify maps err to a Category. Typed client errors are classified by
// their type; anything else by inspecting the message.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		switch clientErr.Type {
		case ErrTypeConnection, ErrTypeTimeout:
			return CategoryConnection
		case ErrTypeAuth:
			return CategoryAuthentication
		case ErrTypeNotFound:
			return CategorySession
		case ErrTypeOverloaded:
			return CategoryServiceOverloaded
		case ErrTypeAPI, ErrTypeInvalidResponse:
			return CategoryAPI
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryConnection
	}

	msg := strings.ToLower(err.Error())
	for _, rule := range keywordRules {
		for _, term := range rule.terms {
			if strings.Contains(msg, term) {
				return rule.category
			}
		}
	}
	return CategoryUnknown
}

// FriendlyMessage returns the fixed text shown to the user for err.
// The first line is a short title. Raw error text appears only for
// unclassified errors and only when verbose is set.
func FriendlyMessage(err error, verbose bool) string {
	switch Classify(err) {
	case CategoryConnection:
		return "Connection Error\n" +
			"Unable to connect to the Specsmith API.\n\n" +
			"Please check:\n" +
			"  - Your internet connection\n" +
			"  - The API URL in your config\n" +
			"  - That the API server is running"
	case CategoryAuthentication:
		return "Authentication Error\n" +
			"Invalid API credentials.\n\n" +
			"Please check:\n" +
			"  - Your access key ID\n" +
			"  - Your secret access token\n" +
			"  - That your credentials are correct (run: specsmith setup)"
	case CategorySession:
		return "Session Error\n" +
			"Unable to find or access the chat session.\n\n" +
			"Please try:\n" +
			"  - Starting a new chat session\n" +
			"  - Checking your connection"
	case CategoryServiceOverloaded:
		return "Service Busy\n" +
			"The upstream AI service is currently experiencing high demand.\n\n" +
			"Please try again in a few moments."
	case CategoryAPI:
		return "API Error\n" +
			"The Specsmith API is temporarily unavailable.\n\n" +
			"Please try again later."
	}

	detail := "An unexpected error occurred."
	if verbose && err != nil {
		detail = "An error occurred: " + err.Error()
	}
	return "Unexpected Error\n" + detail + "\n\n" +
		"Please try again or contact support if the problem persists."
}
