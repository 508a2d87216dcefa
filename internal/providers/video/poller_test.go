package video

import (
	"context"
	"errors"
	"testing"
	"time"

	"mediagen/internal/backend"
	"mediagen/internal/domain"
	"mediagen/internal/storage"
)

// scriptedProvider replays a fixed sequence of snapshots per poll.
type scriptedProvider struct {
	snaps []*StatusSnapshot
	calls int
}

func (s *scriptedProvider) Submit(ctx context.Context, req SubmitRequest) (*domain.AsyncTask, error) {
	return domain.NewAsyncTask("scripted-1", string(backend.VideoVeoTurbo), req.Prompt), nil
}

func (s *scriptedProvider) Status(ctx context.Context, taskID string) (*StatusSnapshot, error) {
	idx := s.calls
	if idx >= len(s.snaps) {
		idx = len(s.snaps) - 1
	}
	s.calls++
	return s.snaps[idx], nil
}

func TestPollUntilDoneCompletes(t *testing.T) {
	provider := &scriptedProvider{snaps: []*StatusSnapshot{
		{Status: domain.TaskStatusPending, Progress: -1},
		{Status: domain.TaskStatusProcessing, Progress: 0.5},
		{Status: domain.TaskStatusCompleted, Progress: 1, ResultURLs: []string{"https://cdn.example.com/done.mp4"}},
	}}
	task, err := provider.Submit(context.Background(), SubmitRequest{Prompt: "ocean waves"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	res, err := PollUntilDone(context.Background(), provider, task, time.Millisecond)
	if err != nil {
		t.Fatalf("PollUntilDone: %v", err)
	}
	if !res.Success || res.OutputLocation != "https://cdn.example.com/done.mp4" {
		t.Fatalf("unexpected result: %#v", res)
	}
	if provider.calls != 3 {
		t.Fatalf("polls = %d, want 3", provider.calls)
	}
	if task.Status != domain.TaskStatusCompleted || task.Progress != 1 {
		t.Fatalf("task not updated: %#v", task)
	}
}

func TestPollUntilDoneMapsFailure(t *testing.T) {
	provider := &scriptedProvider{snaps: []*StatusSnapshot{
		{Status: domain.TaskStatusFailed, Progress: -1, ErrorMessage: "content policy"},
	}}
	task := domain.NewAsyncTask("scripted-2", string(backend.VideoVeoTurbo), "x")

	res, err := PollUntilDone(context.Background(), provider, task, time.Millisecond)
	if err != nil {
		t.Fatalf("PollUntilDone: %v", err)
	}
	if res.Success || res.ErrorCode != "provider_failed" || res.ErrorMessage != "content policy" {
		t.Fatalf("unexpected result: %#v", res)
	}
}

func TestPollUntilDoneHonorsContext(t *testing.T) {
	provider := &scriptedProvider{snaps: []*StatusSnapshot{
		{Status: domain.TaskStatusProcessing, Progress: 0.1},
	}}
	task := domain.NewAsyncTask("scripted-3", string(backend.VideoVeoTurbo), "x")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err := PollUntilDone(ctx, provider, task, 10*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestLocalProviderRoundTrip(t *testing.T) {
	store, err := storage.NewFileStore(t.TempDir(), "http://localhost:8080/static")
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	provider := NewLocalProvider(backend.VideoLTXLocal, store)

	task, err := provider.Submit(context.Background(), SubmitRequest{
		Prompt:    "forest walk",
		Duration:  8 * time.Second,
		RequestID: "req-9",
	})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if task.Status != domain.TaskStatusPending {
		t.Fatalf("submitted task should be pending, got %s", task.Status)
	}

	res, err := PollUntilDone(context.Background(), provider, task, time.Millisecond)
	if err != nil {
		t.Fatalf("PollUntilDone: %v", err)
	}
	if !res.Success {
		t.Fatalf("unexpected result: %#v", res)
	}
	if res.Backend != string(backend.VideoLTXLocal) {
		t.Fatalf("backend = %q", res.Backend)
	}

	if _, err := provider.Status(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyRejectsRegression(t *testing.T) {
	task := domain.NewAsyncTask("t", "veo-turbo", "x")
	if err := Apply(task, &StatusSnapshot{Status: domain.TaskStatusCompleted, Progress: 1, ResultURLs: []string{"u"}}); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if err := Apply(task, &StatusSnapshot{Status: domain.TaskStatusProcessing, Progress: 0.2}); err == nil {
		t.Fatalf("regression from terminal must be rejected")
	}
}
