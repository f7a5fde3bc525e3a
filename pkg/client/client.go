// Package client is a Go client for the postcraft HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/maheshrc27/postcraft/internal/formdata"
	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/transfer"
)

// APIError is a {success:false} answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("postcraft: HTTP %d: %s", e.Status, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 3 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("postcraft: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("postcraft: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var failure transfer.MessageResponse
		message := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &failure) == nil && failure.Error != "" {
			message = failure.Error
		}
		return &APIError{Status: resp.StatusCode, Message: message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("postcraft: decode response: %w", err)
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	return c.do(ctx, method, path, "application/json", body, out)
}

func listPath(path string, query url.Values, limit int) string {
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func (c *Client) GenerateIdeas(ctx context.Context, req transfer.GenerateIdeasRequest) ([]models.PostIdea, error) {
	var resp transfer.IdeasResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/ideas/generate", req, &resp); err != nil {
		return nil, err
	}
	return resp.Ideas, nil
}

func (c *Client) Ideas(ctx context.Context, limit int) ([]models.PostIdea, error) {
	var resp transfer.IdeasResponse
	if err := c.doJSON(ctx, http.MethodGet, listPath("/api/ideas", url.Values{}, limit), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Ideas, nil
}

func (c *Client) UpdateIdea(ctx context.Context, id string, req transfer.UpdateIdeaRequest) (*models.PostIdea, error) {
	var resp transfer.IdeaResponse
	if err := c.doJSON(ctx, http.MethodPatch, "/api/ideas/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	return &resp.Idea, nil
}

func (c *Client) GenerateImage(ctx context.Context, req transfer.GenerateImageRequest) (*models.GeneratedImage, error) {
	var resp transfer.ImageResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/images/generate", req, &resp); err != nil {
		return nil, err
	}
	return &resp.Image, nil
}

func (c *Client) Images(ctx context.Context, postIdeaID string, limit int) ([]models.GeneratedImage, error) {
	query := url.Values{}
	if postIdeaID != "" {
		query.Set("postIdeaId", postIdeaID)
	}
	var resp transfer.ImagesResponse
	if err := c.doJSON(ctx, http.MethodGet, listPath("/api/images", query, limit), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Images, nil
}

// UploadImage sends data as the "image" field of a multipart form and returns
// the stored image with its analysis.
func (c *Client) UploadImage(ctx context.Context, filename, contentType string, data []byte) (*models.UploadedImage, string, error) {
	form, err := formdata.Build([]formdata.Part{formdata.FileField("image", filename, contentType, data)})
	if err != nil {
		return nil, "", err
	}

	var resp transfer.UploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/images/upload", form.ContentType, bytes.NewReader(form.Body), &resp); err != nil {
		return nil, "", err
	}
	return &resp.Image, resp.Analysis, nil
}

func (c *Client) ModifyImage(ctx context.Context, imageID, description string) (string, models.JobStatus, error) {
	req := transfer.ModifyImageRequest{
		ImageID:       imageID,
		Modifications: transfer.Modifications{Description: description},
	}
	var resp transfer.ModifyResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/images/modify", req, &resp); err != nil {
		return "", "", err
	}
	return resp.JobID, resp.Status, nil
}

func (c *Client) JobStatus(ctx context.Context, jobID string) (*transfer.JobStatusResponse, error) {
	var resp transfer.JobStatusResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/images/job/"+url.PathEscape(jobID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) Uploads(ctx context.Context, limit int) ([]models.UploadedImage, error) {
	var resp transfer.UploadsResponse
	if err := c.doJSON(ctx, http.MethodGet, listPath("/api/uploads", url.Values{}, limit), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Images, nil
}

func (c *Client) RemoveUpload(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/uploads/"+url.PathEscape(id), nil, nil)
}
