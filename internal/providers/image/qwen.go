package image

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	"mediagen/internal/providers/qwen"
	"mediagen/internal/retry"
)

type qwenImageClient interface {
	GenerateImage(context.Context, qwen.ImageRequest) (*qwen.ImageAsset, error)
	HasCredentials() bool
	Model() string
}

// QwenGenerator orchestrates calls to DashScope's Qwen image model and falls
// back to another generator (e.g. the synthetic local one) when credentials
// are missing or the remote call fails past its retry budget.
type QwenGenerator struct {
	client   qwenImageClient
	fallback Generator
}

// NewQwenGenerator wires a Qwen client with an optional fallback generator.
func NewQwenGenerator(client qwenImageClient, fallback Generator) *QwenGenerator {
	return &QwenGenerator{client: client, fallback: fallback}
}

// Generate fulfils the Generator interface.
func (g *QwenGenerator) Generate(ctx context.Context, req GenerateRequest) ([]Asset, error) {
	if g == nil || g.client == nil {
		if g != nil && g.fallback != nil {
			return g.fallback.Generate(ctx, req)
		}
		return nil, fmt.Errorf("qwen generator not configured")
	}
	if !g.client.HasCredentials() {
		if g.fallback != nil {
			return g.fallback.Generate(ctx, req)
		}
		return nil, fmt.Errorf("qwen generator missing credentials")
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	size := AspectRatioSize(req.AspectRatio)
	assets := make([]Asset, 0, quantity)
	for i := 0; i < quantity; i++ {
		prompt := buildVariationPrompt(strings.TrimSpace(req.Prompt), quantity, i)
		seed := deterministicSeed(req.RequestID, req.Backend, req.Locale, prompt, i)
		asset, err := g.client.GenerateImage(ctx, qwen.ImageRequest{
			Prompt:         prompt,
			NegativePrompt: strings.TrimSpace(req.NegativePrompt),
			Size:           size,
			Seed:           seed,
			RequestID:      req.RequestID,
		})
		if err != nil {
			if shouldFallback(err) && g.fallback != nil {
				return g.fallback.Generate(ctx, req)
			}
			return nil, err
		}
		assets = append(assets, Asset{
			URL:    asset.URL,
			Format: normalizeFormat(asset.Format),
			Width:  asset.Width,
			Height: asset.Height,
			Data:   asset.Data,
		})
	}
	return assets, nil
}

func (g *QwenGenerator) String() string {
	if g == nil || g.client == nil {
		return "qwen"
	}
	return g.client.Model()
}

var _ Generator = (*QwenGenerator)(nil)

func shouldFallback(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, qwen.ErrMissingAPIKey) {
		return true
	}
	// Retry budget already spent on transport or status errors.
	var exhausted *retry.ExhaustedError
	if errors.As(err, &exhausted) {
		return true
	}
	var status *retry.StatusError
	if errors.As(err, &status) {
		return true
	}
	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	return strings.Contains(msg, "unauthorized") || strings.Contains(msg, "forbidden")
}

func deterministicSeed(values ...any) int {
	if len(values) == 0 {
		return 0
	}
	var parts []string
	for _, v := range values {
		parts = append(parts, fmt.Sprint(v))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	n := binary.BigEndian.Uint32(sum[:4])
	value := int(n % 2147483647)
	if value <= 0 {
		fallback := binary.BigEndian.Uint32(sum[4:8]) % 2147483647
		if fallback == 0 {
			fallback = 1
		}
		value = int(fallback)
	}
	return value
}

func buildVariationPrompt(prompt string, total, index int) string {
	trimmed := strings.TrimSpace(prompt)
	if total <= 1 {
		return trimmed
	}
	if trimmed == "" {
		return fmt.Sprintf("Variation #%d of the same concept.", index+1)
	}
	return fmt.Sprintf("%s\nVariation #%d of the same concept.", trimmed, index+1)
}
