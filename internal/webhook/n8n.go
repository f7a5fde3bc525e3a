package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/extract"
	"github.com/maheshrc27/postcraft/internal/formdata"
	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/transfer"
)

const (
	// photoSide is the size reported in the synthetic attachment envelope.
	photoSide = 1024

	IntentUpload = "upload"
)

// File is an image to upload.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// GenerateIdeas returns the non-blank idea lines the workflow produced. An
// unrecognised but well-formed response yields zero lines, not an error.
func (c *Client) GenerateIdeas(ctx context.Context, topic string) ([]string, error) {
	if strings.TrimSpace(topic) == "" {
		return nil, apperr.Validation("topic", "must not be empty")
	}

	p, err := c.PostJSON(ctx, transfer.WebhookMessage{Message: transfer.WebhookText{Text: topic}})
	if err != nil {
		return nil, fmt.Errorf("generate ideas: %w", err)
	}
	r := extract.IdeaText(p.Value)
	lines := extract.SplitLines(r.Value)
	slog.Info("idea text extracted", "rule", r.Rule, "from_array", r.FromArray, "lines", len(lines))
	return lines, nil
}

// ImageMessage builds the pipe-delimited text an image-generation workflow
// expects.
func ImageMessage(prompt string, format models.Format, postType models.PostType, layout string) string {
	text := fmt.Sprintf("%s | %s | %s", prompt, format, postType)
	if layout != "" {
		text += " | " + layout
	}
	return text
}

// GenerateImage returns the image URL the workflow produced.
func (c *Client) GenerateImage(ctx context.Context, prompt string, format models.Format, postType models.PostType, layout string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", apperr.Validation("prompt", "must not be empty")
	}

	msg := transfer.WebhookMessage{Message: transfer.WebhookText{Text: ImageMessage(prompt, format, postType, layout)}}
	p, err := c.PostJSON(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("generate image: %w", err)
	}
	if reason, ok := workflowError(p.Value); ok {
		return "", &apperr.UpstreamHTTPError{
			Status:  p.Status,
			Message: "image generation failed: " + reason,
			Body:    Preview(p.Raw, p.ContentType),
		}
	}

	r, err := extract.ImageURL(p.Value)
	if err != nil {
		if p.Fallback {
			return "", &apperr.MalformedResponseError{
				Reason:  "image response declared JSON but did not parse",
				Snippet: Preview(p.Raw, p.ContentType),
			}
		}
		return "", err
	}

	slog.Info("image url extracted", "rule", r.Rule, "from_array", r.FromArray)
	return r.Value, nil
}

// workflowError reports a top-level "error" field in a 2xx response.
func workflowError(v any) (string, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return "", false
	}
	switch e := m["error"].(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(e) == "" {
			return "", false
		}
		return e, true
	case bool:
		if !e {
			return "", false
		}
		return "unknown error", true
	default:
		b, err := json.Marshal(e)
		if err != nil {
			return fmt.Sprint(e), true
		}
		return string(b), true
	}
}

// NewPhotoMessage describes file as a chat attachment for the upload
// workflow.
func NewPhotoMessage(fileSize int, caption string, at time.Time) transfer.PhotoMessage {
	ms := at.UnixMilli()
	return transfer.PhotoMessage{
		Photo: []transfer.PhotoSize{{
			FileID:       fmt.Sprintf("upload_%d", ms),
			FileUniqueID: fmt.Sprintf("unique_%d", ms),
			Width:        photoSide,
			Height:       photoSide,
			FileSize:     fileSize,
		}},
		Caption: caption,
	}
}

// UploadParts lays out an upload the way the workflow expects: the file
// under "photo", the attachment envelope under "message" and the routing
// intent.
func UploadParts(file File, caption string, at time.Time) ([]formdata.Part, error) {
	msg, err := json.Marshal(NewPhotoMessage(len(file.Data), caption, at))
	if err != nil {
		return nil, fmt.Errorf("failed to encode photo message: %w", err)
	}

	name := file.Name
	if name == "" {
		name = "upload"
	}
	return []formdata.Part{
		formdata.FileField("photo", name, file.ContentType, file.Data),
		formdata.TextField("message", string(msg)),
		formdata.TextField("intent", IntentUpload),
	}, nil
}

// CheckUpload rejects empty files and files over the upload ceiling.
func (c *Client) CheckUpload(size int64) error {
	if size == 0 {
		return apperr.Validation("image", "file is empty")
	}
	if size > c.maxUploadSize {
		return &apperr.ValidationError{
			Field:    "image",
			Message:  fmt.Sprintf("file is %d bytes, the limit is %d bytes", size, c.maxUploadSize),
			TooLarge: true,
		}
	}
	return nil
}

// UploadAndProcessImage uploads file and returns the processed image as an
// http(s) URL or a data URI.
func (c *Client) UploadAndProcessImage(ctx context.Context, file File, caption string) (string, error) {
	if err := c.CheckUpload(int64(len(file.Data))); err != nil {
		return "", err
	}

	parts, err := UploadParts(file, caption, time.Now())
	if err != nil {
		return "", err
	}

	p, err := c.PostMultipart(ctx, parts)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}

	malformed := &apperr.MalformedResponseError{
		Reason:  "upload response declared JSON but did not parse",
		Snippet: Preview(p.Raw, p.ContentType),
	}

	r, err := extract.ProcessedImage(p.Value)
	if err != nil {
		if p.Fallback {
			return "", malformed
		}
		return "", err
	}
	if p.Fallback && r.Form == extract.FormRaw {
		return "", malformed
	}

	slog.Info("processed image extracted", "rule", r.Rule, "form", r.Form, "from_array", r.FromArray)
	return r.Value, nil
}
