package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/extract"
	"github.com/maheshrc27/postcraft/internal/formdata"
	"github.com/maheshrc27/postcraft/internal/webhook"
)

const (
	photoField   = "photo"
	messageField = "message"
	intentField  = "intent"

	defaultRelayTimeout = 60 * time.Second
)

// RelayResponse is what the upstream answered, ready to be written back.
type RelayResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

type RelayService interface {
	Forward(ctx context.Context, webhookID, contentType string, body []byte) (*RelayResponse, error)
}

type relayService struct {
	target     func(webhookID string) string
	httpClient *http.Client
	now        func() time.Time
}

// NewRelayService forwards browser requests to target(webhookID).
func NewRelayService(target func(webhookID string) string, timeout time.Duration) RelayService {
	if timeout <= 0 {
		timeout = defaultRelayTimeout
	}
	return &relayService{
		target:     target,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

func (s *relayService) Forward(ctx context.Context, webhookID, contentType string, body []byte) (*RelayResponse, error) {
	if strings.TrimSpace(webhookID) == "" {
		return nil, apperr.Validation("webhookId", "must not be empty")
	}

	outType := "application/json"
	outBody := body
	if boundary, err := formdata.Boundary(contentType); err == nil {
		encoded, err := s.rebuild(body, boundary)
		if err != nil {
			return nil, err
		}
		outType, outBody = encoded.ContentType, encoded.Body
	}

	url := s.target(webhookID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(outBody))
	if err != nil {
		return nil, fmt.Errorf("failed to build relay request: %w", err)
	}
	req.Header.Set("Content-Type", outType)

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		slog.Error("relay request failed", "url", url, "error", err)
		return nil, &apperr.TransportError{Op: "POST", URL: url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.TransportError{Op: "read", URL: url, Err: err}
	}

	upstreamType := resp.Header.Get("Content-Type")
	slog.Info("relay response",
		"webhookId", webhookID,
		"status", resp.StatusCode,
		"contentType", upstreamType,
		"duration", time.Since(start),
		"body", webhook.Preview(raw, upstreamType),
	)

	return relayResponse(resp.StatusCode, upstreamType, raw), nil
}

// rebuild re-encodes a browser multipart body the way the workflow expects
// it: the image under photo, then every text field in order, with the
// attachment envelope and intent filled in when the browser left them out.
func (s *relayService) rebuild(body []byte, boundary string) (formdata.Encoded, error) {
	msg, err := formdata.Parse(bytes.NewReader(body), boundary)
	if err != nil {
		return formdata.Encoded{}, apperr.Validation("body", "invalid multipart body: %v", err)
	}

	file, ok := msg.File()
	if !ok {
		return formdata.Encoded{}, apperr.Validation("body", "no file in multipart body")
	}

	data := file.Data
	if normalized, enc, err := extract.NormalizeImageBytes(data); err == nil && enc != extract.EncodingRaw {
		slog.Info("decoded text-encoded image", "field", file.FieldName, "encoding", enc)
		data = normalized
	}

	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" || !bytes.Equal(data, file.Data) {
		contentType = extract.SniffMIME(data, "image/jpeg")
	}

	parts := []formdata.Part{formdata.FileField(photoField, file.Filename, contentType, data)}
	parts = append(parts, msg.Fields()...)

	if !msg.Has(messageField) {
		envelope, err := json.Marshal(webhook.NewPhotoMessage(len(data), "", s.now()))
		if err != nil {
			return formdata.Encoded{}, err
		}
		parts = append(parts, formdata.TextField(messageField, string(envelope)))
	}
	if !msg.Has(intentField) {
		parts = append(parts, formdata.TextField(intentField, webhook.IntentUpload))
	}

	return formdata.Build(parts)
}

func relayResponse(status int, contentType string, raw []byte) *RelayResponse {
	if webhook.IsJSON(contentType) {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			if out, err := json.Marshal(v); err == nil {
				return &RelayResponse{Status: status, ContentType: contentType, Body: out}
			}
		}
		// Declared JSON but sent something else.
		return &RelayResponse{Status: status, ContentType: "text/plain; charset=utf-8", Body: raw}
	}

	if contentType == "" {
		contentType = "text/plain; charset=utf-8"
	}
	return &RelayResponse{Status: status, ContentType: contentType, Body: raw}
}
