// Package upstream holds the error type shared by the outbound API clients.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Kind identifies which upstream collaborator failed
type Kind string

const (
	KindGeneration  Kind = "generation"
	KindTranslation Kind = "translation"
)

// Error describes a failed call to a third-party API
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: %s: status %d: %v", e.Kind, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the call failed because a deadline expired
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// Text renders the error as the message embedded in inline-error responses
// ("Error processing request: ..." or "Translation error: ...").
func (e *Error) Text() string {
	switch e.Kind {
	case KindTranslation:
		return "Translation error: " + e.Err.Error()
	default:
		return "Error processing request: " + e.Err.Error()
	}
}

// As extracts an *Error from err
func As(err error) (*Error, bool) {
	var ue *Error
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}
