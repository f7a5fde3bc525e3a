package providers

import (
	"context"
	"encoding/base64"
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
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

	DefaultGeminiImageModel    = "gemini-2.0-flash-preview-image-generation"
	DefaultGeminiAnalysisModel = "gemini-2.5-pro"
)

type Gemini struct {
	apiKey        string
	imageModel    string
	analysisModel string
	baseURL       string
	httpClient    *http.Client
	retry         RetryPolicy
}

type GeminiOption func(*Gemini)

func WithGeminiBaseURL(u string) GeminiOption {
	return func(g *Gemini) {
		g.baseURL = strings.TrimRight(u, "/")
	}
}

func WithGeminiRetry(p RetryPolicy) GeminiOption {
	return func(g *Gemini) {
		g.retry = p
	}
}

func NewGemini(apiKey, imageModel, analysisModel string, timeout time.Duration, opts ...GeminiOption) *Gemini {
	if imageModel == "" {
		imageModel = DefaultGeminiImageModel
	}
	if analysisModel == "" {
		analysisModel = DefaultGeminiAnalysisModel
	}
	g := &Gemini{
		apiKey:        apiKey,
		imageModel:    imageModel,
		analysisModel: analysisModel,
		baseURL:       geminiBaseURL,
		httpClient:    newHTTPClient(timeout),
		retry:         ImageGenerationRetry(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func aspectFor(format models.Format) string {
	if format == models.FormatFeed {
		return "1:1 square"
	}
	return "9:16 portrait"
}

func enhancedImagePrompt(prompt string, format models.Format) string {
	return fmt.Sprintf(`%s

Style requirements:
- Professional, clean aesthetic
- Modern aesthetic medicine practice or clinic setting
- High quality editorial photography
- Soft, natural light
- No medical instruments, needles or invasive procedures visible
- Warm, professional colour tones
- Composition suited to the Instagram %s format
- At least one person (expert and/or patient)
- No logos, no brand names, photorealistic

Format: %s for Instagram %s`, prompt, format, aspectFor(format), format)
}

func (g *Gemini) endpoint(model string) string {
	return fmt.Sprintf("%s/%s:generateContent", g.baseURL, model)
}

func (g *Gemini) generate(ctx context.Context, model string, req transfer.GeminiRequest) (*transfer.GeminiResponse, error) {
	var resp transfer.GeminiResponse
	err := postJSON(ctx, g.httpClient, g.endpoint(model), map[string]string{"x-goog-api-key": g.apiKey}, req, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// GenerateImage returns the generated image as a data URI. 503 answers are
// retried according to the client's retry policy.
func (g *Gemini) GenerateImage(ctx context.Context, prompt string, format models.Format) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("GEMINI_API_KEY is not set")
	}

	req := transfer.GeminiRequest{
		Contents: []transfer.GeminiContent{{
			Role:  "user",
			Parts: []transfer.GeminiPart{{Text: enhancedImagePrompt(prompt, format)}},
		}},
		GenerationConfig: &transfer.GeminiGenerationConfig{ResponseModalities: []string{"TEXT", "IMAGE"}},
	}

	start := time.Now()
	var resp *transfer.GeminiResponse
	err := g.retry.Do(ctx, "gemini image generation", func(ctx context.Context) error {
		var err error
		resp, err = g.generate(ctx, g.imageModel, req)
		return err
	})
	if err != nil {
		return "", fmt.Errorf("gemini image generation: %w", err)
	}
	slog.Info("gemini image generation completed", "duration", time.Since(start))

	if len(resp.Candidates) == 0 {
		return "", &apperr.NoImageURLError{Snippet: "gemini returned no candidates"}
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			slog.Debug("gemini response text", "text", apperr.Truncate(part.Text, 200))
			continue
		}
		if part.InlineData != nil && part.InlineData.Data != "" {
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			return "data:" + mime + ";base64," + part.InlineData.Data, nil
		}
	}
	return "", &apperr.NoImageURLError{Snippet: "gemini returned no inline image data"}
}

const analysisPrompt = `Analyse this image in detail for Instagram content in aesthetic medicine:

1. COMPOSITION: layout, visual flow, suitability for Instagram formats
2. LIGHTING: quality of light, shadows, mood
3. PEOPLE: presentation, professionalism, emotion
4. SETTING: practice or clinic environment, cleanliness, modernity
5. AESTHETICS: colour harmony, style, quality
6. IMPROVEMENTS: concrete tips for a stronger Instagram impact`

const noAnalysis = "Image analysis could not be performed."

// AnalyzeImage returns a free text critique of the image.
func (g *Gemini) AnalyzeImage(ctx context.Context, data []byte, mimeType string) (string, error) {
	if g.apiKey == "" {
		return "", errors.New("GEMINI_API_KEY is not set")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	req := transfer.GeminiRequest{
		Contents: []transfer.GeminiContent{{
			Parts: []transfer.GeminiPart{
				{InlineData: &transfer.GeminiInlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(data)}},
				{Text: analysisPrompt},
			},
		}},
	}

	start := time.Now()
	resp, err := g.generate(ctx, g.analysisModel, req)
	if err != nil {
		return "", fmt.Errorf("gemini image analysis: %w", err)
	}
	slog.Info("gemini image analysis completed", "duration", time.Since(start))

	var text strings.Builder
	if len(resp.Candidates) > 0 {
		for _, part := range resp.Candidates[0].Content.Parts {
			text.WriteString(part.Text)
		}
	}
	if text.Len() == 0 {
		return noAnalysis, nil
	}
	return text.String(), nil
}
