package providers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/transfer"
)

const (
	openRouterBaseURL      = "https://openrouter.ai/api/v1"
	DefaultOpenRouterModel = "google/gemini-2.5-flash-image"
)

type OpenRouter struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

func NewOpenRouter(apiKey, model, baseURL string, timeout time.Duration) *OpenRouter {
	if model == "" {
		model = DefaultOpenRouterModel
	}
	if baseURL == "" {
		baseURL = openRouterBaseURL
	}
	return &OpenRouter{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

// GenerateImage returns the first image of the first choice, usually a data
// URL.
func (o *OpenRouter) GenerateImage(ctx context.Context, prompt string, format models.Format) (string, error) {
	if o.apiKey == "" {
		return "", errors.New("OPENROUTER_API_KEY is not set")
	}

	req := transfer.ChatCompletionRequest{
		Model:      o.model,
		Messages:   []transfer.ChatMessage{{Role: "user", Content: enhancedImagePrompt(prompt, format)}},
		Modalities: []string{"image", "text"},
	}

	start := time.Now()
	var resp transfer.ChatCompletionResponse
	err := postJSON(ctx, o.httpClient, o.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + o.apiKey}, req, &resp)
	if err != nil {
		return "", fmt.Errorf("openrouter image generation: %w", err)
	}
	slog.Info("openrouter image generation completed", "model", o.model, "duration", time.Since(start))

	if resp.Error != nil && resp.Error.Message != "" {
		return "", &apperr.MalformedResponseError{Reason: "openrouter error: " + resp.Error.Message}
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.Images) == 0 {
		return "", &apperr.NoImageURLError{Snippet: "openrouter returned no images"}
	}

	url := strings.TrimSpace(resp.Choices[0].Message.Images[0].ImageURL.URL)
	if url == "" {
		return "", &apperr.NoImageURLError{Snippet: "openrouter image URL is empty"}
	}
	return url, nil
}
