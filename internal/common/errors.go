// Package common provides shared utilities and types used across the application.
package common

import (
	"context"
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Pipeline errors. All of these abort classification before any card
	// mutation happens; a card that fails classification stays pending.
	ErrRuleRetrieval  = errors.New("rule retrieval failed")
	ErrMatcherTimeout = errors.New("rule matcher timed out")
	ErrMatcherSchema  = errors.New("rule matcher response failed schema validation")
	ErrInvalidAction  = errors.New("unrecognized action type in matched rule")

	// Storage errors.
	ErrCardNotFound     = errors.New("card not found")
	ErrRuleNotFound     = errors.New("classification rule not found")
	ErrDocumentNotFound = errors.New("document not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}

// IsRetryable determines if an error should trigger a retry. Schema and
// action validation errors are never retryable: the matcher already
// answered, it just answered wrong.
func IsRetryable(err error) bool {
	if errors.Is(err, ErrMatcherSchema) || errors.Is(err, ErrInvalidAction) {
		return false
	}

	if errors.Is(err, ErrRateLimit) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
