package source

import (
	"errors"
	"fmt"
)

// Fetch failure kinds. Every error returned by a Fetcher wraps one of these.
var (
	// ErrConfiguration means no candidate source is configured.
	ErrConfiguration = errors.New("source configuration missing")

	// ErrTransport covers network failures and non-success HTTP statuses.
	ErrTransport = errors.New("source transport failed")

	// ErrUpstreamRejection means the endpoint answered with an "Error:" body,
	// typically an invalid shared secret.
	ErrUpstreamRejection = errors.New("source rejected request")

	// ErrTokenization means the body is not valid CSV.
	ErrTokenization = errors.New("invalid csv")
)

// AttemptError records why one candidate source failed.
type AttemptError struct {
	Source string
	Err    error
}

func (e *AttemptError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *AttemptError) Unwrap() error {
	return e.Err
}
