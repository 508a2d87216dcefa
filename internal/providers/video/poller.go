package video

import (
	"context"
	"fmt"
	"time"

	"mediagen/internal/domain"
)

// PollUntilDone polls the provider on the given interval until the task
// reaches a terminal status, then maps it into a GenerationResult. The
// caller bounds the wait through ctx; the loop itself has no deadline.
func PollUntilDone(ctx context.Context, p Provider, task *domain.AsyncTask, interval time.Duration) (*domain.GenerationResult, error) {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		snap, err := p.Status(ctx, task.ID)
		if err != nil {
			return nil, fmt.Errorf("video: poll %s: %w", task.ID, err)
		}
		if err := Apply(task, snap); err != nil {
			return nil, err
		}
		if task.Status.Terminal() {
			return task.ToResult()
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
