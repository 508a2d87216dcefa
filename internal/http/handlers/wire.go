package handlers

import (
	"fmt"

	"mediagen/internal/backend"
	"mediagen/internal/infra"
	"mediagen/internal/providers/image"
	"mediagen/internal/providers/plan"
	"mediagen/internal/providers/qwen"
	"mediagen/internal/providers/video"
	"mediagen/internal/retry"
	"mediagen/internal/storage"
)

// Wire builds the full provider graph from configuration. Backends whose
// credentials are absent fall back to their local synthetic counterparts so
// the assistant stays usable in keyless environments.
func Wire(cfg *infra.Config, logger infra.Logger) (*App, error) {
	app := NewApp(cfg, logger)

	store, err := storage.NewFileStore(cfg.StoragePath, cfg.StorageBaseURL)
	if err != nil {
		return nil, fmt.Errorf("wire storage: %w", err)
	}
	app.Store = store

	policy := retry.Policy{
		MaxRetries:      cfg.MaxRetries,
		InitialDelay:    cfg.InitialDelay,
		BackoffFactor:   cfg.BackoffFactor,
		RetryableStatus: cfg.RetryableStatusCodes,
	}

	// Image backends. The Qwen generator carries a synthetic fallback for
	// keyless and quota-exhausted runs; the other two render locally.
	qwenClient, err := qwen.NewClient(qwen.Options{
		APIKey:  cfg.QwenAPIKey,
		BaseURL: cfg.QwenBaseURL,
		Model:   cfg.QwenModel,
		Logger:  &logger,
		Retry:   policy,
	})
	if err != nil {
		return nil, fmt.Errorf("wire qwen client: %w", err)
	}
	app.Images[backend.ImageQwenPlus] = image.NewQwenGenerator(
		qwenClient,
		image.NewSyntheticGenerator(string(backend.ImageQwenPlus), store),
	)
	app.Images[backend.ImageGeminiFlash] = image.NewSyntheticGenerator(string(backend.ImageGeminiFlash), store)
	app.Images[backend.ImageSDXLLocal] = image.NewSyntheticGenerator(string(backend.ImageSDXLLocal), store)

	// Video backends. Veo is the only cloud entry; without credentials a
	// local provider stands in under the same identifier.
	if cfg.VideoAPIKey != "" {
		cloud, err := video.NewCloudProvider(video.CloudOptions{
			APIKey:  cfg.VideoAPIKey,
			BaseURL: cfg.VideoBaseURL,
			Backend: backend.VideoVeoTurbo,
			Logger:  &logger,
			Retry:   policy,
		})
		if err != nil {
			return nil, fmt.Errorf("wire video cloud provider: %w", err)
		}
		app.Videos[backend.VideoVeoTurbo] = cloud
	} else {
		app.Videos[backend.VideoVeoTurbo] = video.NewLocalProvider(backend.VideoVeoTurbo, store)
	}
	app.Videos[backend.VideoHunyuanLocal] = video.NewLocalProvider(backend.VideoHunyuanLocal, store)
	app.Videos[backend.VideoLTXLocal] = video.NewLocalProvider(backend.VideoLTXLocal, store)

	planner, err := plan.NewGeminiPlanner(plan.GeminiOptions{
		APIKey:  cfg.GeminiAPIKey,
		BaseURL: cfg.GeminiBaseURL,
		Model:   cfg.GeminiModel,
		Logger:  &logger,
		Retry:   policy,
	})
	if err != nil {
		return nil, fmt.Errorf("wire planner: %w", err)
	}
	app.Planner = planner

	return app, nil
}
