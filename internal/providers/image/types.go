package image

import (
	"context"
	"strings"
)

// GenerateRequest describes a normalized request passed to any image provider.
type GenerateRequest struct {
	Prompt         string
	NegativePrompt string
	Quantity       int
	AspectRatio    string
	Backend        string
	RequestID      string
	Locale         string
}

// Asset represents a generated image.
type Asset struct {
	StorageKey string
	URL        string
	Format     string
	Width      int
	Height     int
	Data       []byte
}

// Generator is the contract implemented by all image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) ([]Asset, error)
}

// AspectRatioSize maps a human aspect ratio onto provider pixel dimensions.
func AspectRatioSize(ratio string) string {
	switch strings.TrimSpace(ratio) {
	case "16:9":
		return "1664*928"
	case "9:16":
		return "928*1664"
	case "4:3":
		return "1472*1140"
	case "3:4":
		return "1140*1472"
	default:
		return "1328*1328"
	}
}

func normalizeFormat(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	switch mime {
	case "image/jpeg", "image/jpg":
		return "image/jpeg"
	case "image/png":
		return "image/png"
	default:
		if strings.HasPrefix(mime, "image/") {
			return mime
		}
		return "image/png"
	}
}
