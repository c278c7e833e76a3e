package checker

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"upwatch/internals/modules/monitor"
)

// normalizeURL defaults bare hosts to https.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.Contains(raw, "://") {
		return raw
	}
	return "https://" + raw
}

func (e *Executor) pingWebAttempt(item *monitor.Item) attemptFn {
	url := normalizeURL(item.URL)

	return func(ctx context.Context) Result {
		start := time.Now()

		resp, err := e.get(ctx, url)
		latency := time.Since(start)
		if err != nil {
			return Result{Latency: latency, Message: err.Error()}
		}
		defer resp.Body.Close()
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

		if resp.StatusCode >= e.webMaxStatus {
			return Result{
				Latency: latency,
				Message: fmt.Sprintf("http status %d", resp.StatusCode),
			}
		}

		return Result{Success: true, Latency: latency}
	}
}

func (e *Executor) webContentAttempt(item *monitor.Item) attemptFn {
	url := normalizeURL(item.URL)
	resultValid := item.ResultValid
	resultError := item.ResultError

	return func(ctx context.Context) Result {
		start := time.Now()

		resp, err := e.get(ctx, url)
		latency := time.Since(start)
		if err != nil {
			return Result{Latency: latency, Message: err.Error()}
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusBadRequest {
			return Result{
				Latency: latency,
				Message: fmt.Sprintf("http status %d", resp.StatusCode),
			}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return Result{Latency: latency, Message: fmt.Sprintf("read body: %v", err)}
		}

		ok, reason := EvaluateContent(string(body), resultError, resultValid)
		if !ok {
			return Result{Latency: latency, Message: reason}
		}

		return Result{Success: true, Latency: latency}
	}
}

func (e *Executor) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "upwatch/1.0")

	return e.client.Do(req)
}
