package domain

import (
	"errors"
	"strings"
	"time"
)

// Metrics carries optional measurements attached to a completed generation.
type Metrics struct {
	MediaSeconds  float64       `json:"media_seconds,omitempty"`
	FileSizeBytes int64         `json:"file_size_bytes,omitempty"`
	Elapsed       time.Duration `json:"elapsed_ns,omitempty"`
}

// GenerationResult is the normalized outcome of a single generation call.
// A result is created once per completed or failed call and never mutated;
// a new attempt produces a new result.
//
// Invariant: Success implies a non-empty OutputLocation, failure implies a
// non-empty ErrorCode. Use NewSuccessResult / NewFailureResult, which enforce
// the pairing.
type GenerationResult struct {
	Success        bool      `json:"success"`
	OutputLocation string    `json:"output_location,omitempty"`
	Backend        string    `json:"backend"`
	Prompt         string    `json:"prompt"`
	Metrics        *Metrics  `json:"metrics,omitempty"`
	ErrorCode      string    `json:"error_code,omitempty"`
	ErrorMessage   string    `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NewSuccessResult constructs a successful result. The output location (a
// local path or URL) is mandatory.
func NewSuccessResult(backend, prompt, output string, metrics *Metrics) (*GenerationResult, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, errors.New("domain: successful result requires an output location")
	}
	return &GenerationResult{
		Success:        true,
		OutputLocation: output,
		Backend:        backend,
		Prompt:         prompt,
		Metrics:        metrics,
		CreatedAt:      time.Now().UTC(),
	}, nil
}

// NewFailureResult constructs a failed result. The error code is mandatory.
func NewFailureResult(backend, prompt, code, message string) (*GenerationResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, errors.New("domain: failed result requires an error code")
	}
	return &GenerationResult{
		Success:      false,
		Backend:      backend,
		Prompt:       prompt,
		ErrorCode:    code,
		ErrorMessage: message,
		CreatedAt:    time.Now().UTC(),
	}, nil
}
