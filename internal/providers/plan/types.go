// Package plan expands a short brief into a structured generation plan using
// a large-language-model backend, with a deterministic local fallback.
package plan

import (
	"context"
	"time"

	"mediagen/internal/backend"
)

// Request carries the inputs for planning a generation session.
type Request struct {
	Brief    string
	Duration time.Duration
	Priority backend.Priority
	Locale   string
}

// Scene is one shot of the planned piece.
type Scene struct {
	Prompt  string  `json:"prompt"`
	Seconds float64 `json:"seconds"`
}

// Plan is the structured output handed to the generation workflow.
type Plan struct {
	Title    string   `json:"title"`
	Scenes   []Scene  `json:"scenes"`
	Keywords []string `json:"keywords,omitempty"`
	Provider string   `json:"-"`
}

// Planner is the contract implemented by all planning providers.
type Planner interface {
	Plan(ctx context.Context, req Request) (*Plan, error)
}
