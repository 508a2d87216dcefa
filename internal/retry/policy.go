// Package retry implements the policy-driven retry executor used for every
// outbound provider call: a generic backoff loop and an HTTP specialization
// that classifies responses by status code.
package retry

import (
	"fmt"
	"time"
)

// Policy describes how failed attempts are retried. The zero value of any
// field falls back to the documented default, so callers can override fields
// independently. A Policy is immutable and may be shared across goroutines.
type Policy struct {
	// MaxRetries is the number of additional attempts after the first.
	// Zero means exactly one attempt with no delay.
	MaxRetries int
	// InitialDelay is the wait before the first retry.
	InitialDelay time.Duration
	// BackoffFactor multiplies the delay after each failed attempt.
	BackoffFactor float64
	// RetryableStatus lists HTTP status codes treated as transient.
	RetryableStatus []int
}

// DefaultPolicy returns the documented defaults: 3 retries, 1 second initial
// delay, factor 2.0, retryable codes {429, 500, 502, 503, 504}.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:      3,
		InitialDelay:    time.Second,
		BackoffFactor:   2.0,
		RetryableStatus: []int{429, 500, 502, 503, 504},
	}
}

// withDefaults fills unset fields from DefaultPolicy. MaxRetries is the one
// field where zero is meaningful, so only negative values are corrected.
func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.MaxRetries < 0 {
		p.MaxRetries = def.MaxRetries
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.BackoffFactor <= 0 {
		p.BackoffFactor = def.BackoffFactor
	}
	if p.RetryableStatus == nil {
		p.RetryableStatus = def.RetryableStatus
	}
	return p
}

func (p Policy) retryableStatus(code int) bool {
	for _, c := range p.RetryableStatus {
		if c == code {
			return true
		}
	}
	return false
}

// ExhaustedError is returned once the retry budget is consumed while the
// operation keeps failing. It wraps the most recent underlying cause.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: %d attempts exhausted: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// StatusError is returned by the HTTP executor when retries are exhausted on
// a retryable status code. The unsuccessful response is never handed back to
// the caller.
type StatusError struct {
	Code     int
	Attempts int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("retry: status %d after %d attempts", e.Code, e.Attempts)
}
