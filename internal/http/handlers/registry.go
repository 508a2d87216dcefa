package handlers

import (
	"context"
	"sort"
	"sync"

	"mediagen/internal/domain"
	"mediagen/internal/providers/video"
)

type taskEntry struct {
	task     *domain.AsyncTask
	provider video.Provider
}

// TaskRegistry is the in-process index of submitted video tasks. It exists so
// that status polls can be routed back to the provider that owns the task;
// entries live for the lifetime of the process.
type TaskRegistry struct {
	mu      sync.RWMutex
	entries map[string]*taskEntry
}

// NewTaskRegistry constructs an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{entries: make(map[string]*taskEntry)}
}

// Register stores a freshly submitted task together with its provider.
func (r *TaskRegistry) Register(task *domain.AsyncTask, provider video.Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[task.ID] = &taskEntry{task: task, provider: provider}
}

// Get returns a snapshot copy of the task.
func (r *TaskRegistry) Get(id string) (domain.AsyncTask, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[id]
	if !ok {
		return domain.AsyncTask{}, false
	}
	return *entry.task, true
}

// List returns snapshot copies of all tasks, newest first.
func (r *TaskRegistry) List() []domain.AsyncTask {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.AsyncTask, 0, len(r.entries))
	for _, entry := range r.entries {
		out = append(out, *entry.task)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Refresh polls the owning provider once and folds the snapshot into the
// task. Terminal tasks are returned as-is without touching the provider.
func (r *TaskRegistry) Refresh(ctx context.Context, id string) (domain.AsyncTask, error) {
	r.mu.RLock()
	entry, ok := r.entries[id]
	r.mu.RUnlock()
	if !ok {
		return domain.AsyncTask{}, domain.ErrNotFound
	}

	r.mu.Lock()
	terminal := entry.task.Status.Terminal()
	snapshotBefore := *entry.task
	r.mu.Unlock()
	if terminal {
		return snapshotBefore, nil
	}

	snap, err := entry.provider.Status(ctx, entry.task.ID)
	if err != nil {
		return domain.AsyncTask{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := video.Apply(entry.task, snap); err != nil {
		return domain.AsyncTask{}, err
	}
	return *entry.task, nil
}
