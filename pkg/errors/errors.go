// SPDX-License-Identifier: Apache-2.0
// Package errors provides the closed skill error taxonomy for Chimera.
// Every failure that crosses the skill contract boundary is one of these.
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrorType classifies skill failures for routing, retry and monitoring.
type ErrorType string

const (
	// InputValidation indicates the input payload failed its schema check.
	InputValidation ErrorType = "input_validation"

	// ExternalAPIFailure indicates a collaborator call failed.
	ExternalAPIFailure ErrorType = "external_api_failure"

	// ProcessingTimeout indicates the category wall-clock budget was exceeded.
	ProcessingTimeout ErrorType = "processing_timeout"

	// InsufficientResources indicates a memory or cost ceiling was exceeded.
	InsufficientResources ErrorType = "insufficient_resources"

	// ContentSafetyViolation indicates output failed a safety or brand check.
	ContentSafetyViolation ErrorType = "content_safety_violation"

	// RateLimitExceeded indicates collaborator backpressure.
	RateLimitExceeded ErrorType = "rate_limit_exceeded"
)

// defaultRecoverable holds the taxonomy's recoverability contract.
// InsufficientResources and ContentSafetyViolation are never retryable
// within the same invocation.
var defaultRecoverable = map[ErrorType]bool{
	InputValidation:        true,
	ExternalAPIFailure:     true,
	ProcessingTimeout:      true,
	InsufficientResources:  false,
	ContentSafetyViolation: false,
	RateLimitExceeded:      true,
}

// SkillError is a typed error with rich context for observability.
// It implements the error interface and can be unwrapped with errors.As().
type SkillError struct {
	Type        ErrorType
	Message     string
	Err         error
	Context     map[string]interface{}
	Attributes  map[string]string
	Recoverable bool
}

// Error implements the error interface.
func (e *SkillError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap implements errors.Unwrap for error chain traversal.
func (e *SkillError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements json.Marshaler for structured logging.
func (e *SkillError) MarshalJSON() ([]byte, error) {
	cause := ""
	if e.Err != nil {
		cause = e.Err.Error()
	}
	return json.Marshal(&struct {
		Type        string                 `json:"error_type"`
		Message     string                 `json:"message"`
		Cause       string                 `json:"cause,omitempty"`
		Recoverable bool                   `json:"recoverable"`
		Context     map[string]interface{} `json:"context,omitempty"`
	}{
		Type:        string(e.Type),
		Message:     e.Message,
		Cause:       cause,
		Recoverable: e.Recoverable,
		Context:     e.Context,
	})
}

// New creates a SkillError with the recoverability default for its type.
func New(errType ErrorType, msg string, cause error) *SkillError {
	return &SkillError{
		Type:        errType,
		Message:     msg,
		Err:         cause,
		Context:     make(map[string]interface{}),
		Attributes:  make(map[string]string),
		Recoverable: defaultRecoverable[errType],
	}
}

// WithContext adds a key-value pair to the error context.
// Returns the error for method chaining.
func (e *SkillError) WithContext(key string, value interface{}) *SkillError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithAttribute adds a string attribute for OTEL traces.
// Returns the error for method chaining.
func (e *SkillError) WithAttribute(key, value string) *SkillError {
	if e.Attributes == nil {
		e.Attributes = make(map[string]string)
	}
	e.Attributes[key] = value
	return e
}

// WithRecoverable overrides the recoverability default, e.g. when a
// collaborator signals a permanent rejection.
func (e *SkillError) WithRecoverable(recoverable bool) *SkillError {
	e.Recoverable = recoverable
	return e
}

// RecoverableString returns "true" or "false" as a string for observability.
func (e *SkillError) RecoverableString() string {
	if e.Recoverable {
		return "true"
	}
	return "false"
}

// IsType reports whether err is a SkillError of the given type.
func IsType(err error, errType ErrorType) bool {
	var se *SkillError
	if errors.As(err, &se) {
		return se.Type == errType
	}
	return false
}

// AsSkillError converts an error to a SkillError, classifying it into the
// taxonomy when it is not one already. Returns nil for nil input.
func AsSkillError(err error) *SkillError {
	if err == nil {
		return nil
	}
	var se *SkillError
	if errors.As(err, &se) {
		return se
	}
	return Classify(err)
}

// Classify reclassifies an arbitrary collaborator error into the taxonomy.
// Context deadline and cancellation errors map to ProcessingTimeout; anything
// else is treated as a recoverable collaborator failure. Concrete skills call
// this at the contract boundary so nothing escapes Execute untyped.
func Classify(err error) *SkillError {
	if err == nil {
		return nil
	}
	var se *SkillError
	if errors.As(err, &se) {
		return se
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return New(ProcessingTimeout, "operation cancelled", err)
	}
	return New(ExternalAPIFailure, "collaborator call failed", err)
}

// IsRecoverable reports whether err may succeed on retry. Errors outside the
// taxonomy are considered recoverable; callers wanting stricter behavior
// classify first.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	var se *SkillError
	if errors.As(err, &se) {
		return se.Recoverable
	}
	return true
}
