// Package backend enumerates the available generation backends and selects
// one for a request based on its priority and target duration.
package backend

import "strings"

// Priority is the caller's stated preference when picking a backend.
type Priority string

const (
	PrioritySpeed   Priority = "speed"
	PriorityQuality Priority = "quality"
	PriorityCost    Priority = "cost"
)

// NormalizePriority maps free-form input onto a known priority. Unrecognized
// values route to cost, the defined default.
func NormalizePriority(raw string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(raw))) {
	case PrioritySpeed:
		return PrioritySpeed
	case PriorityQuality:
		return PriorityQuality
	default:
		return PriorityCost
	}
}

// Kind distinguishes backend categories.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// ImageBackend identifies an image generation backend. The set is closed so
// an unhandled provider is a compile-time hole in a switch, not a silent
// runtime default.
type ImageBackend string

const (
	ImageQwenPlus    ImageBackend = "qwen-image-plus"
	ImageGeminiFlash ImageBackend = "gemini-flash-image"
	ImageSDXLLocal   ImageBackend = "sdxl-local"
)

// VideoBackend identifies a video generation backend.
type VideoBackend string

const (
	VideoVeoTurbo     VideoBackend = "veo-turbo"
	VideoHunyuanLocal VideoBackend = "hunyuan-local"
	VideoLTXLocal     VideoBackend = "ltx-local"
)

// Spec is the static metadata for one catalog entry. Entries are defined at
// process start and never mutated.
type Spec struct {
	ID       string   `json:"id"`
	Kind     Kind     `json:"kind"`
	Priority Priority `json:"priority"`
	// CostPerSecond is the billed rate in USD per second of generated media.
	// Local backends are free.
	CostPerSecond float64 `json:"cost_per_second"`
	// RenderFactor is the estimated wall-clock seconds spent per second of
	// generated media.
	RenderFactor float64 `json:"render_factor"`
	Local        bool    `json:"local"`
	Fidelity     string  `json:"fidelity"`
}

// speedRate is the fixed per-second billing rate of the speed-priority
// cloud backend.
const speedRate = 0.12

var imageCatalog = []Spec{
	{ID: string(ImageQwenPlus), Kind: KindImage, Priority: PrioritySpeed, CostPerSecond: 0.04, RenderFactor: 1, Local: false, Fidelity: "high"},
	{ID: string(ImageGeminiFlash), Kind: KindImage, Priority: PriorityQuality, CostPerSecond: 0, RenderFactor: 3, Local: true, Fidelity: "high"},
	{ID: string(ImageSDXLLocal), Kind: KindImage, Priority: PriorityCost, CostPerSecond: 0, RenderFactor: 2, Local: true, Fidelity: "medium"},
}

var videoCatalog = []Spec{
	{ID: string(VideoVeoTurbo), Kind: KindVideo, Priority: PrioritySpeed, CostPerSecond: speedRate, RenderFactor: 2, Local: false, Fidelity: "high"},
	{ID: string(VideoHunyuanLocal), Kind: KindVideo, Priority: PriorityQuality, CostPerSecond: 0, RenderFactor: 20, Local: true, Fidelity: "highest"},
	{ID: string(VideoLTXLocal), Kind: KindVideo, Priority: PriorityCost, CostPerSecond: 0, RenderFactor: 8, Local: true, Fidelity: "medium"},
}

// ImageBackends returns the image catalog.
func ImageBackends() []Spec {
	out := make([]Spec, len(imageCatalog))
	copy(out, imageCatalog)
	return out
}

// VideoBackends returns the video catalog.
func VideoBackends() []Spec {
	out := make([]Spec, len(videoCatalog))
	copy(out, videoCatalog)
	return out
}

// Lookup finds a catalog entry by identifier.
func Lookup(id string) (Spec, bool) {
	for _, s := range imageCatalog {
		if s.ID == id {
			return s, true
		}
	}
	for _, s := range videoCatalog {
		if s.ID == id {
			return s, true
		}
	}
	return Spec{}, false
}

func videoSpec(b VideoBackend) Spec {
	for _, s := range videoCatalog {
		if s.ID == string(b) {
			return s
		}
	}
	// The catalog covers every VideoBackend constant.
	return Spec{ID: string(b), Kind: KindVideo}
}
