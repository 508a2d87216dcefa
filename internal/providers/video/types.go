// Package video wraps the video generation backends. Cloud backends are
// asynchronous: a submission returns a pollable task, and the poller maps the
// terminal task into the shared result type.
package video

import (
	"context"
	"fmt"
	"time"

	"mediagen/internal/backend"
	"mediagen/internal/domain"
)

// SubmitRequest describes a normalized video generation request.
type SubmitRequest struct {
	Prompt    string
	Duration  time.Duration
	Backend   backend.VideoBackend
	RequestID string
	Locale    string
}

// StatusSnapshot is one polling response from a provider.
type StatusSnapshot struct {
	Status       domain.TaskStatus
	Progress     float64 // negative when the provider did not report one
	ResultURLs   []string
	ErrorMessage string
}

// Provider is the contract implemented by all video backends. Submit returns
// a task in the pending state; Status reports the provider's current view of
// the job.
type Provider interface {
	Submit(ctx context.Context, req SubmitRequest) (*domain.AsyncTask, error)
	Status(ctx context.Context, taskID string) (*StatusSnapshot, error)
}

// Apply folds a polling snapshot into the task, enforcing the forward-only
// status progression.
func Apply(task *domain.AsyncTask, snap *StatusSnapshot) error {
	if snap == nil {
		return fmt.Errorf("video: nil status snapshot")
	}
	if err := task.Advance(snap.Status); err != nil {
		return err
	}
	if snap.Progress >= 0 {
		if err := task.SetProgress(snap.Progress); err != nil {
			return err
		}
	}
	if len(snap.ResultURLs) > 0 {
		task.ResultURLs = snap.ResultURLs
	}
	if snap.ErrorMessage != "" {
		task.ErrorMessage = snap.ErrorMessage
	}
	return nil
}
