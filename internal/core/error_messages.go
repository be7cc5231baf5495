package core

// error_messages.go maps fetch and parse failures to user-facing messages.
//
// # Error Codes Reference
//
// Codes are shown next to the message so a user can quote them when reporting
// a problem with the board.
//
// # Source Errors
//
//	CFG001 - No schedule source is configured
//	         Action: Set SOURCE_URL or SOURCE_FALLBACK_URL and restart
//	         Matched: source.ErrConfiguration
//
//	NET001 - The schedule could not be downloaded
//	         Action: Check your connection and try again
//	         Matched: source.ErrTransport
//
//	NET002 - The schedule source refused the request
//	         Action: Check the shared secret with the sheet owner
//	         Matched: source.ErrUpstreamRejection
//
//	NET003 - The schedule source took too long to answer
//	         Action: Please try again in a few moments
//	         Matched: context.DeadlineExceeded, "timeout"
//
// # Data Errors
//
//	CSV001 - The downloaded file is not valid CSV
//	         Action: Make sure the sheet is published as CSV
//	         Matched: source.ErrTokenization, "invalid csv"
//
//	DATA001 - The sheet layout was not recognized
//	          Action: The sheet needs a date row, a header row and schedule rows
//	          Matched: schedule.ErrMalformedInput
//
// # Request Errors
//
//	REQ001 - Request was cancelled
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
//	ERR000 - An unexpected error occurred; check the logs for the technical error
//
// # Matching
//
// When every source failed, the error joins one failure per source and the
// last source's failure decides the code. Sentinels are matched with
// errors.Is first, then the pattern table is searched case-insensitively.

import (
	"context"
	"errors"
	"strings"

	"github.com/JonMunkholm/prayerboard/internal/schedule"
	"github.com/JonMunkholm/prayerboard/internal/source"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// errorKind maps a sentinel error to its user message.
type errorKind struct {
	target error
	msg    UserMessage
}

var (
	msgConfiguration = UserMessage{
		Message: "No schedule source is configured",
		Action:  "Set SOURCE_URL or SOURCE_FALLBACK_URL and restart",
		Code:    "CFG001",
	}
	msgTransport = UserMessage{
		Message: "The schedule could not be downloaded",
		Action:  "Check your connection and try again",
		Code:    "NET001",
	}
	msgRejected = UserMessage{
		Message: "The schedule source refused the request",
		Action:  "Check the shared secret with the sheet owner",
		Code:    "NET002",
	}
	msgTimeout = UserMessage{
		Message: "The schedule source took too long to answer",
		Action:  "Please try again in a few moments",
		Code:    "NET003",
	}
	msgInvalidCSV = UserMessage{
		Message: "The downloaded file is not valid CSV",
		Action:  "Make sure the sheet is published as CSV",
		Code:    "CSV001",
	}
	msgMalformed = UserMessage{
		Message: "The sheet layout was not recognized",
		Action:  "The sheet needs a date row, a header row and schedule rows",
		Code:    "DATA001",
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "REQ001",
	}
)

// errorKinds is checked in order; a timeout inside a transport error is
// reported as a timeout.
var errorKinds = []errorKind{
	{context.DeadlineExceeded, msgTimeout},
	{source.ErrConfiguration, msgConfiguration},
	{source.ErrUpstreamRejection, msgRejected},
	{source.ErrTokenization, msgInvalidCSV},
	{schedule.ErrMalformedInput, msgMalformed},
	{context.Canceled, msgCancelled},
	{source.ErrTransport, msgTransport},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catch errors that lost their sentinel, e.g. ones rebuilt from
// strings. The first match wins.
var errorPatterns = []errorPattern{
	{pattern: "timeout", msg: msgTimeout},
	{pattern: "context deadline exceeded", msg: msgTimeout},
	{pattern: "context canceled", msg: msgCancelled},
	{pattern: "invalid csv", msg: msgInvalidCSV},
	{pattern: "malformed schedule", msg: msgMalformed},
	{pattern: "connection refused", msg: msgTransport},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
//
// Example:
//
//	_, err := svc.Refresh(ctx)
//	msg := MapError(err)
//	// msg.Code == "NET002" when the secret was refused
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	err = lastJoined(err)

	for _, k := range errorKinds {
		if errors.Is(err, k.target) {
			return k.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// lastJoined descends into errors.Join results and returns the last member,
// which for a failed fetch is the last source tried.
func lastJoined(err error) error {
	for {
		joined, ok := err.(interface{ Unwrap() []error })
		if !ok {
			return err
		}
		errs := joined.Unwrap()
		if len(errs) == 0 {
			return err
		}
		err = errs[len(errs)-1]
	}
}

// IsUserFacing reports whether err maps to a specific message rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its user-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
