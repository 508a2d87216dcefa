package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"mediagen/internal/backend"
	"mediagen/internal/domain"
	"mediagen/internal/middleware"
	"mediagen/internal/providers/image"
)

const maxImageQuantity = 4

type imageGenerateRequest struct {
	Prompt         string `json:"prompt"`
	NegativePrompt string `json:"negative_prompt"`
	Quantity       int    `json:"quantity"`
	AspectRatio    string `json:"aspect_ratio"`
	Backend        string `json:"backend"`
}

type assetResponse struct {
	URL        string `json:"url,omitempty"`
	StorageKey string `json:"storage_key,omitempty"`
	Format     string `json:"format"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	Bytes      int    `json:"bytes"`
}

// ImagesGenerate runs a synchronous image generation and answers with the
// normalized result.
func (a *App) ImagesGenerate(w http.ResponseWriter, r *http.Request) {
	var req imageGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "invalid_prompt", "prompt is required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}
	if req.Quantity > maxImageQuantity {
		req.Quantity = maxImageQuantity
	}
	if req.Backend == "" {
		req.Backend = string(backend.ImageQwenPlus)
	}
	generator, ok := a.Images[backend.ImageBackend(req.Backend)]
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported image backend")
		return
	}

	started := time.Now()
	assets, err := generator.Generate(r.Context(), image.GenerateRequest{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		Quantity:       req.Quantity,
		AspectRatio:    req.AspectRatio,
		Backend:        req.Backend,
		RequestID:      middleware.RequestIDFromContext(r.Context()),
		Locale:         middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPrompt) {
			a.error(w, http.StatusBadRequest, "invalid_prompt", err.Error())
			return
		}
		a.Logger.Error().Err(err).Str("backend", req.Backend).Msg("image generation failed")
		result, buildErr := domain.NewFailureResult(req.Backend, req.Prompt, "provider_failed", err.Error())
		if buildErr != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to record result")
			return
		}
		a.json(w, http.StatusBadGateway, map[string]any{"result": result})
		return
	}
	if len(assets) == 0 {
		result, buildErr := domain.NewFailureResult(req.Backend, req.Prompt, "empty_result", "provider returned no assets")
		if buildErr != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to record result")
			return
		}
		a.json(w, http.StatusBadGateway, map[string]any{"result": result})
		return
	}

	var totalBytes int64
	items := make([]assetResponse, 0, len(assets))
	for _, asset := range assets {
		totalBytes += int64(len(asset.Data))
		items = append(items, assetResponse{
			URL:        asset.URL,
			StorageKey: asset.StorageKey,
			Format:     asset.Format,
			Width:      asset.Width,
			Height:     asset.Height,
			Bytes:      len(asset.Data),
		})
	}
	output := assets[0].URL
	if output == "" {
		output = assets[0].StorageKey
	}
	result, err := domain.NewSuccessResult(req.Backend, req.Prompt, output, &domain.Metrics{
		FileSizeBytes: totalBytes,
		Elapsed:       time.Since(started),
	})
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to record result")
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"result": result,
		"assets": items,
	})
}
