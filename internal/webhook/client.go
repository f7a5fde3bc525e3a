// Package webhook talks to the n8n automation endpoint. It sends JSON and
// multipart requests and decodes whatever comes back without trusting the
// Content-Type header.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/formdata"
	"golang.org/x/time/rate"
)

const (
	DefaultTimeout       = 60 * time.Second
	DefaultMaxUploadSize = 10 << 20

	previewLength = 200
)

type Client struct {
	url           string
	httpClient    *http.Client
	limiter       *rate.Limiter
	maxUploadSize int64
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit throttles outbound calls; rps <= 0 disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithMaxUploadSize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxUploadSize = n
		}
	}
}

func New(url string, opts ...Option) *Client {
	c := &Client{
		url:           url,
		httpClient:    &http.Client{Timeout: DefaultTimeout},
		maxUploadSize: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) URL() string {
	return c.url
}

func (c *Client) MaxUploadSize() int64 {
	return c.maxUploadSize
}

// Payload is a decoded 2xx response. Value is whatever the body decoded to:
// a JSON value, or {"data": text} for non-JSON bodies. Fallback is set when
// the body claimed to be JSON but did not parse.
type Payload struct {
	Value       any
	Status      int
	ContentType string
	Fallback    bool
	Raw         []byte
}

// PostJSON sends payload as a JSON body.
func (c *Client) PostJSON(ctx context.Context, payload any) (*Payload, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// PostMultipart sends parts as multipart/form-data. The boundary is chosen
// by mime/multipart.
func (c *Client) PostMultipart(ctx context.Context, parts []formdata.Part) (*Payload, error) {
	enc, err := formdata.Build(parts)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(enc.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", enc.ContentType)

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*Payload, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(req.Context()); err != nil {
			return nil, &apperr.TransportError{Op: req.Method, URL: c.url, Err: err}
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("webhook request failed", "url", c.url, "error", err, "duration", time.Since(start))
		return nil, &apperr.TransportError{Op: req.Method, URL: c.url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.TransportError{Op: "read " + req.Method, URL: c.url, Err: err}
	}

	contentType := resp.Header.Get("Content-Type")
	slog.Info("webhook response",
		"url", c.url,
		"status", resp.StatusCode,
		"content_type", contentType,
		"bytes", len(raw),
		"duration", time.Since(start),
		"body", Preview(raw, contentType),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apperr.UpstreamHTTPError{
			Status:  resp.StatusCode,
			Message: ErrorMessage(raw),
			Body:    apperr.Truncate(string(raw), previewLength),
		}
	}

	p := Decode(raw, contentType)
	p.Status = resp.StatusCode
	if p.Fallback {
		slog.Warn("webhook declared JSON but body did not parse", "url", c.url, "body", Preview(raw, contentType))
	}
	return p, nil
}

// Decode interprets a response body according to its declared content type,
// falling back to {"data": text} when the declaration is wrong.
func Decode(raw []byte, contentType string) *Payload {
	p := &Payload{ContentType: contentType, Raw: raw}
	if IsJSON(contentType) {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			p.Value = v
			return p
		}
		p.Fallback = true
	}
	p.Value = map[string]any{"data": string(raw)}
	return p
}

func IsJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(contentType, "json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// ErrorMessage pulls a human readable message out of an error body.
func ErrorMessage(raw []byte) string {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err == nil {
		if msg, ok := body["message"].(string); ok && msg != "" {
			return msg
		}
		switch e := body["error"].(type) {
		case map[string]any:
			if msg, ok := e["message"].(string); ok && msg != "" {
				return msg
			}
		case string:
			if e != "" {
				return e
			}
		}
	}
	return apperr.Truncate(strings.TrimSpace(string(raw)), previewLength)
}

// Preview renders a body for logging.
func Preview(raw []byte, contentType string) string {
	if strings.HasPrefix(contentType, "image/") || strings.HasPrefix(contentType, "application/octet-stream") {
		return fmt.Sprintf("<%d bytes of %s>", len(raw), contentType)
	}
	return apperr.Truncate(string(raw), previewLength)
}
