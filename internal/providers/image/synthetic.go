package image

import (
	"bytes"
	"context"
	"fmt"
	goimage "image"
	"image/color"
	"image/draw"
	"image/png"
	"strings"
	"time"

	"mediagen/internal/storage"
)

// SyntheticGenerator renders deterministic placeholder images locally. It
// backs the free local backend and doubles as the fallback when a cloud
// provider is unavailable, so the rest of the pipeline stays exercised in
// keyless and CI environments.
type SyntheticGenerator struct {
	model string
	store *storage.FileStore
}

// NewSyntheticGenerator builds a local generator. store may be nil; assets
// then carry inline data only.
func NewSyntheticGenerator(model string, store *storage.FileStore) *SyntheticGenerator {
	if strings.TrimSpace(model) == "" {
		model = "sdxl-local"
	}
	return &SyntheticGenerator{model: model, store: store}
}

// Generate fulfils the Generator interface.
func (g *SyntheticGenerator) Generate(ctx context.Context, req GenerateRequest) ([]Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	width, height := aspectDimensions(req.AspectRatio)
	assets := make([]Asset, 0, quantity)
	for i := 0; i < quantity; i++ {
		seed := deterministicSeed(req.RequestID, req.Prompt, req.Locale, g.model, i)
		data, err := renderPlaceholder(width, height, seed)
		if err != nil {
			return nil, fmt.Errorf("synthetic: render: %w", err)
		}
		asset := Asset{
			Format: "image/png",
			Width:  width,
			Height: height,
			Data:   data,
		}
		if g.store != nil {
			key := fmt.Sprintf("images/%s/%s-%04d.png", sanitizeID(req.RequestID), g.model, i+1)
			stored, err := g.store.Write(ctx, key, data)
			if err != nil {
				return nil, err
			}
			asset.StorageKey = stored
			asset.URL = g.store.URL(stored)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}

func (g *SyntheticGenerator) String() string {
	return g.model
}

var _ Generator = (*SyntheticGenerator)(nil)

func aspectDimensions(ratio string) (int, int) {
	switch strings.TrimSpace(ratio) {
	case "16:9":
		return 1280, 720
	case "9:16":
		return 720, 1280
	case "4:3":
		return 1024, 768
	case "3:4":
		return 768, 1024
	default:
		return 1024, 1024
	}
}

// renderPlaceholder fills the canvas with a seed-derived flat color so two
// requests with the same inputs produce byte-identical assets.
func renderPlaceholder(width, height, seed int) ([]byte, error) {
	img := goimage.NewRGBA(goimage.Rect(0, 0, width, height))
	fill := color.RGBA{
		R: uint8(seed),
		G: uint8(seed >> 8),
		B: uint8(seed >> 16),
		A: 0xff,
	}
	draw.Draw(img, img.Bounds(), &goimage.Uniform{C: fill}, goimage.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func sanitizeID(id string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Sprintf("req-%d", time.Now().UnixNano())
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, id)
}
