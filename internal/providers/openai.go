package providers

import (
	"context"
	"encoding/json"
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
	openAIBaseURL      = "https://api.openai.com/v1"
	DefaultOpenAIModel = "gpt-4o-mini"

	ideaMaxTokens = 800
)

type OpenAI struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenAI returns a chat completions client; an empty baseURL means the
// public API.
func NewOpenAI(apiKey, model, baseURL string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = DefaultOpenAIModel
	}
	if baseURL == "" {
		baseURL = openAIBaseURL
	}
	return &OpenAI{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: newHTTPClient(timeout),
	}
}

type IdeaParams struct {
	Topic    string
	Audience string
	PostType models.PostType
	Format   models.Format
	Count    int
}

func ideaSystemPrompt(p IdeaParams) string {
	cta := "No call-to-action line (organic post)."
	if p.PostType == models.PostTypeCTA {
		cta = "A call-to-action line of at most six words, unobtrusive, e.g. 'Book a consultation.'"
	}

	return fmt.Sprintf(`You are an Instagram content specialist for aesthetic medicine.

Create %d professional Instagram %s post idea(s) on the topic: %s
Target audience: %s

STRUCTURE:
- title: concise, at most 60 characters
- description: hook, 2-3 bullet points, %s
- prompt: an image generation prompt for the post visual

TONE: serious, professional, formal, no promises of healing.

Answer only with this JSON format:
{"ideas":[{"title":"...","description":"...","prompt":"..."}]}`, p.Count, p.Format, p.Topic, p.Audience, cta)
}

// GenerateIdeas asks the model for p.Count ideas as a JSON object.
func (o *OpenAI) GenerateIdeas(ctx context.Context, p IdeaParams) ([]transfer.GeneratedIdea, error) {
	if o.apiKey == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}

	req := transfer.ChatCompletionRequest{
		Model: o.model,
		Messages: []transfer.ChatMessage{
			{Role: "system", Content: ideaSystemPrompt(p)},
			{Role: "user", Content: fmt.Sprintf("Create %d Instagram post ideas on the topic: %s", p.Count, p.Topic)},
		},
		ResponseFormat: &transfer.ResponseFormat{Type: "json_object"},
		MaxTokens:      ideaMaxTokens,
	}

	start := time.Now()
	var resp transfer.ChatCompletionResponse
	err := postJSON(ctx, o.httpClient, o.baseURL+"/chat/completions",
		map[string]string{"Authorization": "Bearer " + o.apiKey}, req, &resp)
	if err != nil {
		return nil, fmt.Errorf("openai idea generation: %w", err)
	}
	slog.Info("openai idea generation completed", "topic", p.Topic, "duration", time.Since(start))

	if len(resp.Choices) == 0 {
		return nil, &apperr.MalformedResponseError{Reason: "openai returned no choices"}
	}

	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		content = "{}"
	}

	var ideas transfer.GeneratedIdeas
	if err := json.Unmarshal([]byte(content), &ideas); err != nil {
		return nil, &apperr.MalformedResponseError{
			Reason:  "openai content is not the requested JSON object",
			Snippet: apperr.Truncate(content, 200),
		}
	}
	return ideas.Ideas, nil
}
