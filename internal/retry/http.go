package retry

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// HTTPExecutor specializes the retry loop for request/response calls. A
// response whose status code is in the policy's retryable set is consumed and
// retried instead of being returned; connection-level failures retry on the
// same schedule; everything else propagates immediately.
type HTTPExecutor struct {
	client *http.Client
	policy Policy
	logger zerolog.Logger
}

// NewHTTPExecutor builds an HTTP executor around the given client. A nil
// client falls back to a plain http.Client.
func NewHTTPExecutor(client *http.Client, policy Policy, logger zerolog.Logger) *HTTPExecutor {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPExecutor{client: client, policy: policy.withDefaults(), logger: logger}
}

// Policy returns the effective policy after defaulting.
func (e *HTTPExecutor) Policy() Policy {
	return e.policy
}

// DoRequest issues the request produced by build, retrying retryable status
// codes and transport failures under the policy. build is invoked once per
// attempt so request bodies are fresh on every try.
//
// A 429 response doubles the wait for that attempt only; the stored delay
// used for subsequent backoff growth keeps the normal multiplication. Once
// the budget is spent on a retryable status, the caller receives a
// *StatusError carrying the last status code and the total attempt count.
func (e *HTTPExecutor) DoRequest(ctx context.Context, build func(ctx context.Context) (*http.Request, error)) (*http.Response, error) {
	delay := e.policy.InitialDelay
	for attempt := 1; ; attempt++ {
		req, err := build(ctx)
		if err != nil {
			return nil, err
		}
		resp, err := e.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !isTransportError(err) {
				return nil, err
			}
			if attempt > e.policy.MaxRetries {
				e.logger.Error().
					Err(err).
					Int("attempts", attempt).
					Str("url", req.URL.String()).
					Msg("retry: budget exhausted on transport failure")
				return nil, &ExhaustedError{Attempts: attempt, Err: err}
			}
			e.logger.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("delay", delay).
				Str("url", req.URL.String()).
				Msg("retry: transport failure, backing off")
			if serr := sleep(ctx, delay); serr != nil {
				return nil, serr
			}
			delay = time.Duration(float64(delay) * e.policy.BackoffFactor)
			continue
		}

		if !e.policy.retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		code := resp.StatusCode
		drain(resp)

		if attempt > e.policy.MaxRetries {
			e.logger.Error().
				Int("status", code).
				Int("attempts", attempt).
				Str("url", req.URL.String()).
				Msg("retry: budget exhausted on retryable status")
			return nil, &StatusError{Code: code, Attempts: attempt}
		}

		wait := delay
		if code == http.StatusTooManyRequests {
			wait *= 2
		}
		e.logger.Warn().
			Int("status", code).
			Int("attempt", attempt).
			Dur("delay", wait).
			Str("url", req.URL.String()).
			Msg("retry: retryable status, backing off")
		if serr := sleep(ctx, wait); serr != nil {
			return nil, serr
		}
		delay = time.Duration(float64(delay) * e.policy.BackoffFactor)
	}
}

// isTransportError reports whether err is a connection-level failure (refused
// connection, timeout, DNS error) rather than a caller mistake.
func isTransportError(err error) bool {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr)
}

func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	_ = resp.Body.Close()
}
