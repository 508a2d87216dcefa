package video

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediagen/internal/backend"
	"mediagen/internal/domain"
	"mediagen/internal/storage"
)

// LocalProvider renders deterministic placeholder clips on the local machine.
// It mirrors the asynchronous contract of the cloud backends: Submit returns
// a pending task and the work is reported finished on the next poll, so the
// same polling path exercises both provider kinds.
type LocalProvider struct {
	backend backend.VideoBackend
	store   *storage.FileStore

	mu   sync.Mutex
	jobs map[string]*StatusSnapshot
}

// NewLocalProvider builds a provider for one of the local backends.
func NewLocalProvider(be backend.VideoBackend, store *storage.FileStore) *LocalProvider {
	if be == "" {
		be = backend.VideoLTXLocal
	}
	return &LocalProvider{
		backend: be,
		store:   store,
		jobs:    map[string]*StatusSnapshot{},
	}
}

// Submit renders the clip synchronously (it is a placeholder, not a real
// diffusion run) but still hands back a pending task handle.
func (p *LocalProvider) Submit(ctx context.Context, req SubmitRequest) (*domain.AsyncTask, error) {
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, domain.ErrInvalidPrompt
	}
	id := strings.TrimSpace(req.RequestID)
	if id == "" {
		id = uuid.NewString()
	}
	taskID := fmt.Sprintf("local-%s", id)

	data := renderClipStub(prompt, req.Duration)
	snap := &StatusSnapshot{Status: domain.TaskStatusCompleted, Progress: 1}
	if p.store != nil {
		key := fmt.Sprintf("videos/%s/%s.mp4", string(p.backend), id)
		stored, err := p.store.Write(ctx, key, data)
		if err != nil {
			snap = &StatusSnapshot{Status: domain.TaskStatusFailed, Progress: -1, ErrorMessage: err.Error()}
		} else {
			snap.ResultURLs = []string{p.store.URL(stored)}
		}
	} else {
		snap.ResultURLs = []string{fmt.Sprintf("memory://%s.mp4", taskID)}
	}

	p.mu.Lock()
	p.jobs[taskID] = snap
	p.mu.Unlock()

	return domain.NewAsyncTask(taskID, string(p.backend), prompt), nil
}

// Status reports the finished snapshot recorded at submit time.
func (p *LocalProvider) Status(ctx context.Context, taskID string) (*StatusSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.mu.Lock()
	snap, ok := p.jobs[taskID]
	p.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("video: task %s: %w", taskID, domain.ErrNotFound)
	}
	return snap, nil
}

var _ Provider = (*LocalProvider)(nil)

// renderClipStub produces deterministic bytes standing in for an encoded
// clip. Real encoding is out of scope.
func renderClipStub(prompt string, duration time.Duration) []byte {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%d", prompt, duration.Milliseconds())))
	return []byte("MEDIAGEN-CLIP:" + hex.EncodeToString(sum[:]))
}
