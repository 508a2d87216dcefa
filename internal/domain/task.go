package domain

import (
	"fmt"
	"strings"
	"time"
)

// TaskStatus enumerates the lifecycle states of an asynchronous provider job.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// Terminal reports whether the status is final.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	}
	return false
}

func (s TaskStatus) rank() int {
	switch s {
	case TaskStatusPending:
		return 0
	case TaskStatusProcessing:
		return 1
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return 2
	}
	return -1
}

// ParseTaskStatus maps a provider status string onto the known set.
func ParseTaskStatus(raw string) (TaskStatus, error) {
	s := TaskStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s.rank() < 0 {
		return "", fmt.Errorf("domain: unknown task status %q", raw)
	}
	return s, nil
}

// AsyncTask is a handle to a long-running external generation job. The task
// moves strictly forward: pending, processing, then one terminal status.
// Once terminal it never changes again, and no task ever returns to pending.
type AsyncTask struct {
	ID         string     `json:"id"`
	Backend    string     `json:"backend"`
	Prompt     string     `json:"prompt"`
	Status     TaskStatus `json:"status"`
	ResultURLs []string   `json:"result_urls,omitempty"`
	// Progress is a fraction in [0, 1]; negative means the provider did not
	// report one.
	Progress     float64   `json:"progress"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAsyncTask creates a task in the pending state.
func NewAsyncTask(id, backend, prompt string) *AsyncTask {
	now := time.Now().UTC()
	return &AsyncTask{
		ID:        id,
		Backend:   backend,
		Prompt:    prompt,
		Status:    TaskStatusPending,
		Progress:  -1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Advance moves the task to the next status as reported by the provider.
// Same-status updates are no-ops for non-terminal tasks so that repeated
// polling responses are harmless. Any transition out of a terminal status, or
// back to pending, is rejected.
func (t *AsyncTask) Advance(next TaskStatus) error {
	if next.rank() < 0 {
		return fmt.Errorf("domain: unknown task status %q", next)
	}
	if t.Status.Terminal() {
		if next == t.Status {
			return nil
		}
		return fmt.Errorf("%w: cannot move %s task %s to %s", ErrTaskTerminal, t.Status, t.ID, next)
	}
	if next == TaskStatusPending && t.Status != TaskStatusPending {
		return fmt.Errorf("domain: task %s cannot regress from %s to pending", t.ID, t.Status)
	}
	t.Status = next
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// SetProgress records a provider-reported completion fraction.
func (t *AsyncTask) SetProgress(p float64) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("domain: progress %f out of range [0, 1]", p)
	}
	t.Progress = p
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// ToResult maps a terminal task into a GenerationResult. Calling it on a
// non-terminal task is an error.
func (t *AsyncTask) ToResult() (*GenerationResult, error) {
	switch t.Status {
	case TaskStatusCompleted:
		if len(t.ResultURLs) == 0 {
			return NewFailureResult(t.Backend, t.Prompt, "empty_result", "provider reported completion without result URLs")
		}
		return NewSuccessResult(t.Backend, t.Prompt, t.ResultURLs[0], nil)
	case TaskStatusFailed:
		msg := t.ErrorMessage
		if msg == "" {
			msg = "provider reported failure"
		}
		return NewFailureResult(t.Backend, t.Prompt, "provider_failed", msg)
	case TaskStatusCancelled:
		return NewFailureResult(t.Backend, t.Prompt, "cancelled", "task was cancelled")
	default:
		return nil, fmt.Errorf("%w: task %s is %s", ErrTaskNotTerminal, t.ID, t.Status)
	}
}
