package video

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

	"mediagen/internal/backend"
	"mediagen/internal/domain"
	"mediagen/internal/infra"
	"mediagen/internal/retry"
)

// ErrMissingAPIKey indicates the cloud client was configured without credentials.
var ErrMissingAPIKey = errors.New("video: api key is required")

// CloudOptions configures the asynchronous cloud video client.
type CloudOptions struct {
	APIKey         string
	BaseURL        string
	Backend        backend.VideoBackend
	HTTPClient     *http.Client
	Logger         *infra.Logger
	Retry          retry.Policy
	RequestTimeout time.Duration
}

// CloudProvider talks to a cloud video synthesis API that exposes a
// submit-then-poll job contract.
type CloudProvider struct {
	apiKey  string
	baseURL string
	backend backend.VideoBackend
	exec    *retry.HTTPExecutor
	logger  *infra.Logger
}

type submitPayload struct {
	Model           string  `json:"model"`
	Prompt          string  `json:"prompt"`
	DurationSeconds float64 `json:"duration_seconds"`
	RequestID       string  `json:"request_id,omitempty"`
}

type taskPayload struct {
	TaskID    string   `json:"task_id"`
	Status    string   `json:"status"`
	Progress  *float64 `json:"progress,omitempty"`
	VideoURLs []string `json:"video_urls,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// NewCloudProvider constructs a cloud provider with sane defaults.
func NewCloudProvider(opts CloudOptions) (*CloudProvider, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		return nil, errors.New("video: base url is required")
	}
	be := opts.Backend
	if be == "" {
		be = backend.VideoVeoTurbo
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &CloudProvider{
		apiKey:  strings.TrimSpace(opts.APIKey),
		baseURL: baseURL,
		backend: be,
		exec:    retry.NewHTTPExecutor(httpClient, opts.Retry, *logger),
		logger:  logger,
	}, nil
}

// HasCredentials reports whether the provider can perform remote calls.
func (p *CloudProvider) HasCredentials() bool {
	return p.apiKey != ""
}

// Submit enqueues a generation job and returns its task handle in pending.
func (p *CloudProvider) Submit(ctx context.Context, req SubmitRequest) (*domain.AsyncTask, error) {
	if !p.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, domain.ErrInvalidPrompt
	}
	be := req.Backend
	if be == "" {
		be = p.backend
	}
	body, err := json.Marshal(submitPayload{
		Model:           string(be),
		Prompt:          prompt,
		DurationSeconds: req.Duration.Seconds(),
		RequestID:       req.RequestID,
	})
	if err != nil {
		return nil, fmt.Errorf("video: encode request: %w", err)
	}

	endpoint := p.baseURL + "/video/generations"
	resp, err := p.exec.DoRequest(ctx, func(ctx context.Context) (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("video: build request: %w", err)
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
		return httpReq, nil
	})
	if err != nil {
		return nil, fmt.Errorf("video: submit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("video: submit status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(raw)), domain.ErrProviderFailure)
	}
	var decoded taskPayload
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("video: decode submit response: %w", err)
	}
	if decoded.TaskID == "" {
		return nil, errors.New("video: submit response missing task id")
	}

	task := domain.NewAsyncTask(decoded.TaskID, string(be), prompt)
	p.logger.Debug().
		Str("task_id", task.ID).
		Str("backend", task.Backend).
		Msg("video: submitted generation job")
	return task, nil
}

// Status fetches the provider's current view of a job.
func (p *CloudProvider) Status(ctx context.Context, taskID string) (*StatusSnapshot, error) {
	if !p.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, errors.New("video: task id is required")
	}

	endpoint := p.baseURL + "/video/generations/" + url.PathEscape(taskID)
	resp, err := p.exec.DoRequest(ctx, func(ctx context.Context) (*http.Request, error) {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("video: build status request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
		return httpReq, nil
	})
	if err != nil {
		return nil, fmt.Errorf("video: status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("video: task %s: %w", taskID, domain.ErrNotFound)
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("video: status %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(raw)), domain.ErrProviderFailure)
	}
	var decoded taskPayload
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("video: decode status response: %w", err)
	}
	status, err := domain.ParseTaskStatus(decoded.Status)
	if err != nil {
		return nil, err
	}
	snap := &StatusSnapshot{
		Status:       status,
		Progress:     -1,
		ResultURLs:   decoded.VideoURLs,
		ErrorMessage: decoded.Error,
	}
	if decoded.Progress != nil {
		snap.Progress = *decoded.Progress
	}
	return snap, nil
}

var _ Provider = (*CloudProvider)(nil)
