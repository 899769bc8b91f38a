package conversation

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired sessions.
	ErrSessionNotFound = errors.New("conversation: session not found")
	// ErrCompleted is returned when input arrives after the lead was submitted.
	ErrCompleted = errors.New("conversation: session completed")
	// ErrEmptyMessage is returned for blank free text.
	ErrEmptyMessage = errors.New("conversation: empty message")
	// ErrUnknownOption is returned for a quick option id that does not exist.
	ErrUnknownOption = errors.New("conversation: unknown option")
	// ErrDispatchFailed wraps a lead that could not be recorded.
	ErrDispatchFailed = errors.New("conversation: lead dispatch failed")
)
