package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mediagen/internal/backend"
	"mediagen/internal/domain"
	"mediagen/internal/infra"
	"mediagen/internal/providers/image"
	"mediagen/internal/providers/plan"
	"mediagen/internal/providers/video"
)

func newTestApp() *App {
	cfg := &infra.Config{DefaultLocale: "en"}
	return NewApp(cfg, zerolog.New(io.Discard))
}

type stubGenerator struct {
	assets []image.Asset
	err    error
	last   image.GenerateRequest
}

func (s *stubGenerator) Generate(ctx context.Context, req image.GenerateRequest) ([]image.Asset, error) {
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return s.assets, nil
}

type stubVideoProvider struct {
	snap      *video.StatusSnapshot
	submitErr error
	statusErr error
}

func (s *stubVideoProvider) Submit(ctx context.Context, req video.SubmitRequest) (*domain.AsyncTask, error) {
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	return domain.NewAsyncTask("vid-1", string(req.Backend), req.Prompt), nil
}

func (s *stubVideoProvider) Status(ctx context.Context, taskID string) (*video.StatusSnapshot, error) {
	if s.statusErr != nil {
		return nil, s.statusErr
	}
	return s.snap, nil
}

func postJSON(t *testing.T, handler http.HandlerFunc, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	app := newTestApp()
	rec := httptest.NewRecorder()
	app.Health(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestBackendsListsCatalog(t *testing.T) {
	app := newTestApp()
	rec := httptest.NewRecorder()
	app.Backends(rec, httptest.NewRequest(http.MethodGet, "/v1/backends", nil))

	var body struct {
		Images []backend.Spec `json:"images"`
		Videos []backend.Spec `json:"videos"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Images) != 3 || len(body.Videos) != 3 {
		t.Fatalf("catalog sizes = %d/%d", len(body.Images), len(body.Videos))
	}
}

func TestSelectBackendSpeed(t *testing.T) {
	app := newTestApp()
	rec := postJSON(t, app.SelectBackend, map[string]any{
		"duration_seconds": 10,
		"priority":         "speed",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp selectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Backend != string(backend.VideoVeoTurbo) {
		t.Fatalf("backend = %q", resp.Backend)
	}
	if resp.EstimatedCostUSD < 1.19 || resp.EstimatedCostUSD > 1.21 {
		t.Fatalf("cost = %f, want ~1.20", resp.EstimatedCostUSD)
	}
}

func TestSelectBackendFoldsPriorityCase(t *testing.T) {
	app := newTestApp()
	rec := postJSON(t, app.SelectBackend, map[string]any{
		"duration_seconds": 10,
		"priority":         "SPEED",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp selectResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Backend != string(backend.VideoVeoTurbo) {
		t.Fatalf("backend = %q, want %q", resp.Backend, backend.VideoVeoTurbo)
	}
	if resp.Priority != string(backend.PrioritySpeed) {
		t.Fatalf("priority echo = %q, want %q", resp.Priority, backend.PrioritySpeed)
	}
	if strings.Contains(resp.Justification, "unrecognized") {
		t.Fatalf("case-folded priority must not hit the fallback: %q", resp.Justification)
	}
}

func TestVideosGenerateFoldsPriorityCase(t *testing.T) {
	app := newTestApp()
	app.Videos[backend.VideoVeoTurbo] = &stubVideoProvider{}

	rec := postJSON(t, app.VideosGenerate, map[string]any{
		"prompt":           "ocean waves",
		"duration_seconds": 6,
		"priority":         "Speed",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Selection *backend.Selection `json:"selection"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Selection == nil || body.Selection.Backend != backend.VideoVeoTurbo {
		t.Fatalf("selection = %#v", body.Selection)
	}
}

func TestSelectBackendRejectsNegativeDuration(t *testing.T) {
	app := newTestApp()
	rec := postJSON(t, app.SelectBackend, map[string]any{"duration_seconds": -1})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestImagesGenerateSuccess(t *testing.T) {
	app := newTestApp()
	gen := &stubGenerator{assets: []image.Asset{{
		URL:    "http://localhost:8080/static/images/a.png",
		Format: "image/png",
		Width:  1328,
		Height: 1328,
		Data:   []byte("png-bytes"),
	}}}
	app.Images[backend.ImageQwenPlus] = gen

	rec := postJSON(t, app.ImagesGenerate, map[string]any{"prompt": "a red bicycle"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Result domain.GenerationResult `json:"result"`
		Assets []assetResponse         `json:"assets"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Result.Success || body.Result.OutputLocation == "" {
		t.Fatalf("result = %#v", body.Result)
	}
	if body.Result.Metrics == nil || body.Result.Metrics.FileSizeBytes != int64(len("png-bytes")) {
		t.Fatalf("metrics = %#v", body.Result.Metrics)
	}
	if gen.last.Quantity != 1 {
		t.Fatalf("default quantity = %d, want 1", gen.last.Quantity)
	}
}

func TestImagesGenerateProviderFailure(t *testing.T) {
	app := newTestApp()
	app.Images[backend.ImageQwenPlus] = &stubGenerator{err: errors.New("upstream exploded")}

	rec := postJSON(t, app.ImagesGenerate, map[string]any{"prompt": "a red bicycle"})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Result domain.GenerationResult `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Result.Success || body.Result.ErrorCode != "provider_failed" {
		t.Fatalf("result = %#v", body.Result)
	}
}

func TestImagesGenerateValidation(t *testing.T) {
	app := newTestApp()
	app.Images[backend.ImageQwenPlus] = &stubGenerator{}

	rec := postJSON(t, app.ImagesGenerate, map[string]any{"prompt": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty prompt: status = %d", rec.Code)
	}

	rec = postJSON(t, app.ImagesGenerate, map[string]any{"prompt": "x", "backend": "nope"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown backend: status = %d", rec.Code)
	}
}

func TestVideosGenerateAutoSelects(t *testing.T) {
	app := newTestApp()
	app.Videos[backend.VideoVeoTurbo] = &stubVideoProvider{}

	rec := postJSON(t, app.VideosGenerate, map[string]any{
		"prompt":           "ocean waves",
		"duration_seconds": 6,
		"priority":         "speed",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Task      domain.AsyncTask   `json:"task"`
		Selection *backend.Selection `json:"selection"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Task.Status != domain.TaskStatusPending {
		t.Fatalf("task status = %s", body.Task.Status)
	}
	if body.Selection == nil || body.Selection.Backend != backend.VideoVeoTurbo {
		t.Fatalf("selection = %#v", body.Selection)
	}
	if _, ok := app.Tasks.Get(body.Task.ID); !ok {
		t.Fatalf("task %s not registered", body.Task.ID)
	}
}

func TestVideosGenerateExplicitBackendUnavailable(t *testing.T) {
	app := newTestApp()
	rec := postJSON(t, app.VideosGenerate, map[string]any{
		"prompt":  "ocean waves",
		"backend": "veo-turbo",
	})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTaskStatusRefreshesAndMapsResult(t *testing.T) {
	app := newTestApp()
	provider := &stubVideoProvider{snap: &video.StatusSnapshot{
		Status:     domain.TaskStatusCompleted,
		Progress:   1,
		ResultURLs: []string{"https://cdn.example.com/clip.mp4"},
	}}
	task := domain.NewAsyncTask("vid-9", string(backend.VideoVeoTurbo), "x")
	app.Tasks.Register(task, provider)

	router := chi.NewRouter()
	router.Get("/v1/tasks/{id}", app.TaskStatus)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tasks/vid-9", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Task   domain.AsyncTask         `json:"task"`
		Result *domain.GenerationResult `json:"result"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Task.Status != domain.TaskStatusCompleted {
		t.Fatalf("task status = %s", body.Task.Status)
	}
	if body.Result == nil || !body.Result.Success || body.Result.OutputLocation != "https://cdn.example.com/clip.mp4" {
		t.Fatalf("result = %#v", body.Result)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/tasks/missing", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing task: status = %d", rec.Code)
	}
}

func TestTaskStatusSkipsProviderWhenTerminal(t *testing.T) {
	app := newTestApp()
	provider := &stubVideoProvider{statusErr: errors.New("must not be called")}
	task := domain.NewAsyncTask("vid-2", string(backend.VideoLTXLocal), "x")
	if err := task.Advance(domain.TaskStatusFailed); err != nil {
		t.Fatalf("Advance: %v", err)
	}
	task.ErrorMessage = "content policy"
	app.Tasks.Register(task, provider)

	got, err := app.Tasks.Refresh(context.Background(), "vid-2")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got.Status != domain.TaskStatusFailed {
		t.Fatalf("status = %s", got.Status)
	}
}

func TestPlansGenerateStatic(t *testing.T) {
	app := newTestApp()
	app.Planner = plan.NewStaticPlanner()

	rec := postJSON(t, app.PlansGenerate, map[string]any{
		"brief":            "sunset over the bay",
		"duration_seconds": 9,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Plan     plan.Plan `json:"plan"`
		Provider string    `json:"provider"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Plan.Scenes) != 3 || body.Provider == "" {
		t.Fatalf("plan = %#v provider = %q", body.Plan, body.Provider)
	}

	rec = postJSON(t, app.PlansGenerate, map[string]any{"brief": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty brief: status = %d", rec.Code)
	}
}

func TestTaskListNewestFirst(t *testing.T) {
	app := newTestApp()
	provider := &stubVideoProvider{}
	older := domain.NewAsyncTask("old", "ltx-local", "x")
	older.CreatedAt = time.Now().Add(-time.Hour)
	app.Tasks.Register(older, provider)
	app.Tasks.Register(domain.NewAsyncTask("new", "ltx-local", "y"), provider)

	items := app.Tasks.List()
	if len(items) != 2 || items[0].ID != "new" {
		t.Fatalf("items = %#v", items)
	}
}
