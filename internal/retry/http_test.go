package retry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"
)

// scriptedTransport replays a fixed sequence of status codes or errors and
// records when each attempt arrived.
type scriptedTransport struct {
	script []any // int status code or error
	stamps []time.Time
	bodies []string
}

func (s *scriptedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	s.stamps = append(s.stamps, time.Now())
	if req.Body != nil {
		data, _ := io.ReadAll(req.Body)
		s.bodies = append(s.bodies, string(data))
		_ = req.Body.Close()
	} else {
		s.bodies = append(s.bodies, "")
	}
	idx := len(s.stamps) - 1
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	switch v := s.script[idx].(type) {
	case error:
		return nil, v
	case int:
		return &http.Response{
			StatusCode: v,
			Body:       io.NopCloser(bytes.NewReader(nil)),
			Request:    req,
		}, nil
	}
	panic("bad script entry")
}

func newHTTPExec(t *testing.T, script []any, policy Policy) (*HTTPExecutor, *scriptedTransport) {
	t.Helper()
	transport := &scriptedTransport{script: script}
	exec := NewHTTPExecutor(&http.Client{Transport: transport}, policy, testLogger())
	return exec, transport
}

func buildGet(ctx context.Context) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, http.MethodGet, "http://upstream.test/generate", nil)
}

func TestDoRequestRetriesRetryableStatusThenSucceeds(t *testing.T) {
	exec, transport := newHTTPExec(t, []any{503, 503, 200},
		Policy{MaxRetries: 3, InitialDelay: 20 * time.Millisecond, BackoffFactor: 2})

	resp, err := exec.DoRequest(context.Background(), buildGet)
	if err != nil {
		t.Fatalf("DoRequest returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if len(transport.stamps) != 3 {
		t.Fatalf("attempts = %d, want 3", len(transport.stamps))
	}
}

func TestDoRequestNonRetryableStatusReturnedImmediately(t *testing.T) {
	exec, transport := newHTTPExec(t, []any{404},
		Policy{MaxRetries: 3, InitialDelay: time.Millisecond, BackoffFactor: 2})

	resp, err := exec.DoRequest(context.Background(), buildGet)
	if err != nil {
		t.Fatalf("DoRequest returned error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if len(transport.stamps) != 1 {
		t.Fatalf("attempts = %d, want 1 (no retry budget spent)", len(transport.stamps))
	}
}

func TestDoRequestExhaustionCarriesStatusAndAttempts(t *testing.T) {
	exec, transport := newHTTPExec(t, []any{502},
		Policy{MaxRetries: 2, InitialDelay: time.Millisecond, BackoffFactor: 2})

	resp, err := exec.DoRequest(context.Background(), buildGet)
	if resp != nil {
		t.Fatalf("exhaustion must not return the unsuccessful response")
	}
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if serr.Code != 502 || serr.Attempts != 3 {
		t.Fatalf("StatusError = %+v, want code 502 attempts 3", serr)
	}
	if len(transport.stamps) != 3 {
		t.Fatalf("attempts = %d, want 3", len(transport.stamps))
	}
}

func TestDoRequestRateLimitDoublesWaitWithoutCompounding(t *testing.T) {
	// 429 on attempt 1 with computed delay 100ms: wait ~200ms before attempt
	// 2. Attempt 2 fails with 500: wait the normally scaled ~200ms (100ms * 2^1)
	// before attempt 3. The doubling must not feed the stored delay.
	exec, transport := newHTTPExec(t, []any{429, 500, 200},
		Policy{MaxRetries: 3, InitialDelay: 100 * time.Millisecond, BackoffFactor: 2})

	resp, err := exec.DoRequest(context.Background(), buildGet)
	if err != nil {
		t.Fatalf("DoRequest returned error: %v", err)
	}
	defer resp.Body.Close()
	if len(transport.stamps) != 3 {
		t.Fatalf("attempts = %d, want 3", len(transport.stamps))
	}
	assertWait(t, transport.stamps[1].Sub(transport.stamps[0]), 200*time.Millisecond)
	assertWait(t, transport.stamps[2].Sub(transport.stamps[1]), 200*time.Millisecond)
}

func TestDoRequestRetriesTransportFailures(t *testing.T) {
	refused := errors.New("connect: connection refused")
	exec, transport := newHTTPExec(t, []any{refused, refused, 200},
		Policy{MaxRetries: 3, InitialDelay: 5 * time.Millisecond, BackoffFactor: 2})

	resp, err := exec.DoRequest(context.Background(), buildGet)
	if err != nil {
		t.Fatalf("DoRequest returned error: %v", err)
	}
	defer resp.Body.Close()
	if len(transport.stamps) != 3 {
		t.Fatalf("attempts = %d, want 3", len(transport.stamps))
	}
}

func TestDoRequestTransportExhaustionWrapsCause(t *testing.T) {
	refused := errors.New("connect: connection refused")
	exec, transport := newHTTPExec(t, []any{refused},
		Policy{MaxRetries: 1, InitialDelay: time.Millisecond, BackoffFactor: 2})

	_, err := exec.DoRequest(context.Background(), buildGet)
	var exhausted *ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected ExhaustedError, got %v", err)
	}
	if exhausted.Attempts != 2 {
		t.Fatalf("Attempts = %d, want 2", exhausted.Attempts)
	}
	if len(transport.stamps) != 2 {
		t.Fatalf("attempts = %d, want 2", len(transport.stamps))
	}
}

func TestDoRequestBuildErrorPropagatesImmediately(t *testing.T) {
	exec, _ := newHTTPExec(t, []any{200},
		Policy{MaxRetries: 3, InitialDelay: time.Millisecond, BackoffFactor: 2})

	bad := errors.New("cannot marshal payload")
	calls := 0
	_, err := exec.DoRequest(context.Background(), func(ctx context.Context) (*http.Request, error) {
		calls++
		return nil, bad
	})
	if !errors.Is(err, bad) {
		t.Fatalf("expected build error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("build calls = %d, want 1", calls)
	}
}

func TestDoRequestContextCancelDuringBackoff(t *testing.T) {
	exec, transport := newHTTPExec(t, []any{503},
		Policy{MaxRetries: 3, InitialDelay: 10 * time.Second, BackoffFactor: 2})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	_, err := exec.DoRequest(ctx, buildGet)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(transport.stamps) != 1 {
		t.Fatalf("attempts = %d, want 1", len(transport.stamps))
	}
}

func TestDoRequestBuildsFreshRequestPerAttempt(t *testing.T) {
	exec, transport := newHTTPExec(t, []any{500, 200},
		Policy{MaxRetries: 2, InitialDelay: time.Millisecond, BackoffFactor: 2})

	builds := 0
	resp, err := exec.DoRequest(context.Background(), func(ctx context.Context) (*http.Request, error) {
		builds++
		return http.NewRequestWithContext(ctx, http.MethodPost, "http://upstream.test/generate",
			bytes.NewReader([]byte(`{"prompt":"a cat"}`)))
	})
	if err != nil {
		t.Fatalf("DoRequest returned error: %v", err)
	}
	defer resp.Body.Close()
	if builds != 2 {
		t.Fatalf("builds = %d, want 2", builds)
	}
	for i, body := range transport.bodies {
		if body != `{"prompt":"a cat"}` {
			t.Fatalf("attempt %d body = %q", i+1, body)
		}
	}
}
