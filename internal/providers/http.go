// Package providers holds thin REST clients for the AI services: OpenAI for
// idea text, Gemini for image generation and analysis, and OpenRouter for
// image generation.
package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/transfer"
)

const defaultTimeout = 120 * time.Second

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

// postJSON sends body to url and decodes a 2xx answer into out.
func postJSON(ctx context.Context, hc *http.Client, url string, headers map[string]string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return &apperr.TransportError{Op: http.MethodPost, URL: url, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &apperr.TransportError{Op: "read " + http.MethodPost, URL: url, Err: err}
	}

	slog.Debug("provider response", "url", url, "status", resp.StatusCode, "bytes", len(respBody), "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &apperr.UpstreamHTTPError{
			Status:  resp.StatusCode,
			Message: errorMessage(respBody),
			Body:    apperr.Truncate(string(respBody), 200),
		}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return &apperr.MalformedResponseError{Reason: "parse response: " + err.Error(), Snippet: apperr.Truncate(string(respBody), 200)}
	}
	return nil
}

func errorMessage(body []byte) string {
	var parsed struct {
		Error *transfer.APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error != nil && parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return apperr.Truncate(string(body), 200)
}
