package plan

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mediagen/internal/infra"
	"mediagen/internal/retry"
)

// GeminiOptions configures the Gemini planning client.
type GeminiOptions struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
	Retry      retry.Policy
}

// GeminiPlanner calls the Gemini generateContent API and parses the model's
// JSON answer into a Plan. Without credentials, or when the remote call fails
// past its retry budget, it falls back to the static planner.
type GeminiPlanner struct {
	apiKey   string
	baseURL  string
	model    string
	exec     *retry.HTTPExecutor
	logger   *infra.Logger
	fallback Planner
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts,omitempty"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// NewGeminiPlanner constructs a planner with sane defaults.
func NewGeminiPlanner(opts GeminiOptions) (*GeminiPlanner, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &GeminiPlanner{
		apiKey:   strings.TrimSpace(opts.APIKey),
		baseURL:  baseURL,
		model:    model,
		exec:     retry.NewHTTPExecutor(httpClient, opts.Retry, *logger),
		logger:   logger,
		fallback: NewStaticPlanner(),
	}, nil
}

// Model returns the configured model identifier.
func (g *GeminiPlanner) Model() string {
	return g.model
}

// Plan fulfils the Planner interface.
func (g *GeminiPlanner) Plan(ctx context.Context, req Request) (*Plan, error) {
	if strings.TrimSpace(req.Brief) == "" {
		return nil, errors.New("plan: brief is required")
	}
	if g.apiKey == "" {
		return g.fallback.Plan(ctx, req)
	}
	plan, err := g.remotePlan(ctx, req)
	if err != nil {
		g.logger.Warn().
			Err(err).
			Str("model", g.model).
			Msg("plan: remote planning failed, falling back to static plan")
		return g.fallback.Plan(ctx, req)
	}
	return plan, nil
}

var _ Planner = (*GeminiPlanner)(nil)

func (g *GeminiPlanner) remotePlan(ctx context.Context, req Request) (*Plan, error) {
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: buildPlanningPrompt(req)}},
		}},
		GenerationConfig: &geminiGenerationConfig{ResponseMimeType: "application/json"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("plan: encode request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	resp, err := g.exec.DoRequest(ctx, func(ctx context.Context) (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("plan: build request: %w", err)
		}
		q := httpReq.URL.Query()
		q.Set("key", g.apiKey)
		httpReq.URL.RawQuery = q.Encode()
		httpReq.Header.Set("Content-Type", "application/json")
		return httpReq, nil
	})
	if err != nil {
		return nil, fmt.Errorf("plan: generate content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var decoded geminiResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err == nil && decoded.Error.Message != "" {
			return nil, fmt.Errorf("plan: gemini status %d: %s", resp.StatusCode, decoded.Error.Message)
		}
		return nil, fmt.Errorf("plan: gemini status %d", resp.StatusCode)
	}

	var decoded geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("plan: decode response: %w", err)
	}
	text := firstText(decoded)
	if text == "" {
		return nil, errors.New("plan: empty model response")
	}

	var parsed Plan
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, fmt.Errorf("plan: parse model json: %w", err)
	}
	if parsed.Title == "" || len(parsed.Scenes) == 0 {
		return nil, errors.New("plan: model returned incomplete plan")
	}
	parsed.Provider = g.model

	g.logger.Debug().
		Str("model", g.model).
		Int("scenes", len(parsed.Scenes)).
		Msg("plan: generated remote plan")
	return &parsed, nil
}

func buildPlanningPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Plan a short generated video.\n")
	fmt.Fprintf(&b, "Brief: %s\n", strings.TrimSpace(req.Brief))
	if req.Duration > 0 {
		fmt.Fprintf(&b, "Target duration: %.0f seconds\n", req.Duration.Seconds())
	}
	if req.Priority != "" {
		fmt.Fprintf(&b, "Priority: %s\n", req.Priority)
	}
	if locale := strings.TrimSpace(req.Locale); locale != "" {
		fmt.Fprintf(&b, "Locale: %s\n", locale)
	}
	b.WriteString(`Answer with JSON: {"title": string, "scenes": [{"prompt": string, "seconds": number}], "keywords": [string]}`)
	return b.String()
}

func firstText(resp geminiResponse) string {
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if text := strings.TrimSpace(part.Text); text != "" {
				return text
			}
		}
	}
	return ""
}
