// Package errors provides standardized error handling patterns for kgx
// components. It includes error classification, standard error variables,
// and helper functions for consistent error wrapping and classification
// across the pipeline.
package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/biolink/kgx/pkg/retry"
)

// ErrorClass represents the classification of errors for handling purposes.
type ErrorClass int

const (
	// ErrorTransient represents temporary errors that may be retried, e.g.
	// a property-graph DB connection blip.
	ErrorTransient ErrorClass = iota
	// ErrorInvalid represents errors due to invalid input records or
	// configuration. Per-record invalid errors never abort the pipeline.
	ErrorInvalid
	// ErrorFatal represents unrecoverable errors that stop the pipeline.
	ErrorFatal
)

// String returns the string representation of ErrorClass.
func (ec ErrorClass) String() string {
	switch ec {
	case ErrorTransient:
		return "transient"
	case ErrorInvalid:
		return "invalid"
	case ErrorFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Standard error variables for common conditions (§7 taxonomy).
var (
	// Prefix Manager (§4.1)
	ErrUnknownPrefix = errors.New("unknown CURIE prefix")
	ErrNoContraction = errors.New("no base IRI matches for contraction")

	// Source / Sink lifecycle (§4.3/§4.4)
	ErrSourceExhausted = errors.New("source already drained")
	ErrSourceClosed    = errors.New("source is closed")
	ErrSinkFinalized   = errors.New("sink already finalized")
	ErrAlreadyStopped  = errors.New("already stopped")
	ErrInvalidData     = errors.New("invalid data")

	// Parsing / records (§7)
	ErrMalformedRecord       = errors.New("malformed record")
	ErrMissingNodeProperty   = errors.New("missing required node property")
	ErrMissingEdgeProperty   = errors.New("missing required edge property")
	ErrInvalidCURIE          = errors.New("invalid CURIE")
	ErrInvalidCategory       = errors.New("invalid category")
	ErrNoCategory            = errors.New("node lacks category")
	ErrInvalidEdgePredicate  = errors.New("predicate not in relation hierarchy")
	ErrDuplicateNode         = errors.New("duplicate node id")

	// Transformer (§4.5/§5)
	ErrStreamingUnsupportedOperation = errors.New("operation requires a populated graph store and is unsupported in streaming mode")
	ErrCancelled                     = errors.New("operation cancelled")

	// Clique merge (§4.7)
	ErrCliqueConflict = errors.New("clique contains nodes of incompatible categories")

	// Configuration / IO
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrMissingConfig  = errors.New("missing required configuration")
	ErrUnknownFormat  = errors.New("unknown or ambiguous format")
	ErrIO             = errors.New("i/o failure")
	ErrConnectionLost = errors.New("property-graph database connection lost")
	ErrAuthFailed     = errors.New("property-graph database authentication failed")
)

// ClassifiedError wraps an error with its classification.
type ClassifiedError struct {
	Class     ErrorClass
	Err       error
	Message   string
	Component string
	Operation string
}

// Error implements the error interface.
func (ce *ClassifiedError) Error() string {
	if ce.Message != "" {
		return ce.Message
	}
	return ce.Err.Error()
}

// Unwrap returns the underlying error.
func (ce *ClassifiedError) Unwrap() error {
	return ce.Err
}

// IsTransient checks if an error is transient and should be retried.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorTransient
	}

	if errors.Is(err, ErrConnectionLost) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	for _, pattern := range []string{"timeout", "connection", "network", "temporary", "unavailable", "busy"} {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// IsFatal checks if an error is fatal and should stop the pipeline.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorFatal
	}

	if errors.Is(err, ErrInvalidConfig) ||
		errors.Is(err, ErrMissingConfig) ||
		errors.Is(err, ErrUnknownFormat) ||
		errors.Is(err, ErrAuthFailed) ||
		errors.Is(err, ErrIO) ||
		errors.Is(err, ErrCancelled) {
		return true
	}
	return false
}

// IsInvalid checks if an error is due to invalid input.
func IsInvalid(err error) bool {
	if err == nil {
		return false
	}

	var ce *ClassifiedError
	if errors.As(err, &ce) {
		return ce.Class == ErrorInvalid
	}

	return errors.Is(err, ErrMalformedRecord) ||
		errors.Is(err, ErrInvalidCURIE) ||
		errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrMissingNodeProperty) ||
		errors.Is(err, ErrMissingEdgeProperty) ||
		errors.Is(err, ErrInvalidCategory) ||
		errors.Is(err, ErrInvalidEdgePredicate)
}

// Classify returns the error class for an error.
func Classify(err error) ErrorClass {
	if err == nil {
		return ErrorTransient
	}
	if IsFatal(err) {
		return ErrorFatal
	}
	if IsInvalid(err) {
		return ErrorInvalid
	}
	if IsTransient(err) {
		return ErrorTransient
	}
	return ErrorInvalid
}

func newClassified(class ErrorClass, err error, component, operation, message string) *ClassifiedError {
	return &ClassifiedError{
		Class:     class,
		Err:       err,
		Message:   message,
		Component: component,
		Operation: operation,
	}
}

// Wrap creates a standardized error with context following the pattern:
// "component.method: action failed: %w"
func Wrap(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s.%s: %s failed: %w", component, method, action, err)
}

// WrapTransient wraps an error as transient with context.
func WrapTransient(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(ErrorTransient, wrapped, component, method, wrapped.Error())
}

// WrapFatal wraps an error as fatal with context.
func WrapFatal(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(ErrorFatal, wrapped, component, method, wrapped.Error())
}

// WrapInvalid wraps an error as invalid with context.
func WrapInvalid(err error, component, method, action string) error {
	if err == nil {
		return nil
	}
	wrapped := Wrap(err, component, method, action)
	return newClassified(ErrorInvalid, wrapped, component, method, wrapped.Error())
}

// RetryConfig defines configuration for retry operations against the
// property-graph database client.
type RetryConfig struct {
	MaxRetries      int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	RetryableErrors []error
}

// DefaultRetryConfig returns a sensible default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
	}
}

// ShouldRetry determines if an error should be retried based on config.
func (rc RetryConfig) ShouldRetry(err error, attempt int) bool {
	if err == nil || attempt >= rc.MaxRetries {
		return false
	}
	if !IsTransient(err) {
		return false
	}
	if len(rc.RetryableErrors) > 0 {
		for _, retryable := range rc.RetryableErrors {
			if errors.Is(err, retryable) {
				return true
			}
		}
		return false
	}
	return true
}

// ToRetryConfig converts to the pkg/retry framework's Config type.
func (rc RetryConfig) ToRetryConfig() retry.Config {
	return retry.Config{
		MaxAttempts:  rc.MaxRetries + 1,
		InitialDelay: rc.InitialDelay,
		MaxDelay:     rc.MaxDelay,
		Multiplier:   rc.BackoffFactor,
		AddJitter:    true,
	}
}
