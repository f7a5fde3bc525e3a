package service

import (
	"context"
	"fmt"

	"github.com/maheshrc27/postcraft/internal/extract"
	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/providers"
	"github.com/maheshrc27/postcraft/internal/webhook"
)

// IdeaDraft is a generated idea before it is stored.
type IdeaDraft struct {
	Title       string
	Description string
	Prompt      string
	Layout      string
	Format      models.Format
	PostType    models.PostType
}

type IdeaGenerator interface {
	GenerateIdeas(ctx context.Context, p providers.IdeaParams) ([]IdeaDraft, error)
}

type ImageParams struct {
	Prompt   string
	Format   models.Format
	PostType models.PostType
	Layout   string
}

type ImageGenerator interface {
	// GenerateImage returns an http(s) URL or a data URI.
	GenerateImage(ctx context.Context, p ImageParams) (string, error)
	Name() string
}

// ImageProcessor sends an uploaded image through the modification workflow.
type ImageProcessor interface {
	ProcessImage(ctx context.Context, file webhook.File, caption string) (string, error)
}

type ImageAnalyzer interface {
	AnalyzeImage(ctx context.Context, data []byte, mimeType string) (string, error)
}

type webhookIdeaGenerator struct {
	client *webhook.Client
}

func NewWebhookIdeaGenerator(client *webhook.Client) IdeaGenerator {
	return &webhookIdeaGenerator{client: client}
}

func (g *webhookIdeaGenerator) GenerateIdeas(ctx context.Context, p providers.IdeaParams) ([]IdeaDraft, error) {
	lines, err := g.client.GenerateIdeas(ctx, p.Topic)
	if err != nil {
		return nil, err
	}
	if p.Count > 0 && len(lines) > p.Count {
		lines = lines[:p.Count]
	}

	drafts := make([]IdeaDraft, 0, len(lines))
	for i, line := range lines {
		parsed := extract.ParseIdeaLine(line, i, p.Format, p.PostType)
		drafts = append(drafts, IdeaDraft{
			Title:       parsed.Title,
			Description: fmt.Sprintf("Generated %s post idea", parsed.Format),
			Prompt:      parsed.Title,
			Layout:      parsed.Layout,
			Format:      parsed.Format,
			PostType:    parsed.PostType,
		})
	}
	return drafts, nil
}

type openAIIdeaGenerator struct {
	client *providers.OpenAI
}

func NewOpenAIIdeaGenerator(client *providers.OpenAI) IdeaGenerator {
	return &openAIIdeaGenerator{client: client}
}

func (g *openAIIdeaGenerator) GenerateIdeas(ctx context.Context, p providers.IdeaParams) ([]IdeaDraft, error) {
	ideas, err := g.client.GenerateIdeas(ctx, p)
	if err != nil {
		return nil, err
	}

	drafts := make([]IdeaDraft, 0, len(ideas))
	for i, idea := range ideas {
		title := idea.Title
		if title == "" {
			title = fmt.Sprintf("Idea %d", i+1)
		}
		drafts = append(drafts, IdeaDraft{
			Title:       title,
			Description: idea.Description,
			Prompt:      idea.Prompt,
			Format:      p.Format,
			PostType:    p.PostType,
		})
	}
	return drafts, nil
}

type webhookImageGenerator struct {
	client *webhook.Client
}

func NewWebhookImageGenerator(client *webhook.Client) ImageGenerator {
	return &webhookImageGenerator{client: client}
}

func (g *webhookImageGenerator) Name() string { return "n8n" }

func (g *webhookImageGenerator) GenerateImage(ctx context.Context, p ImageParams) (string, error) {
	return g.client.GenerateImage(ctx, p.Prompt, p.Format, p.PostType, p.Layout)
}

type geminiImageGenerator struct {
	client *providers.Gemini
}

func NewGeminiImageGenerator(client *providers.Gemini) ImageGenerator {
	return &geminiImageGenerator{client: client}
}

func (g *geminiImageGenerator) Name() string { return "gemini" }

func (g *geminiImageGenerator) GenerateImage(ctx context.Context, p ImageParams) (string, error) {
	return g.client.GenerateImage(ctx, p.Prompt, p.Format)
}

type openRouterImageGenerator struct {
	client *providers.OpenRouter
}

func NewOpenRouterImageGenerator(client *providers.OpenRouter) ImageGenerator {
	return &openRouterImageGenerator{client: client}
}

func (g *openRouterImageGenerator) Name() string { return "openrouter" }

func (g *openRouterImageGenerator) GenerateImage(ctx context.Context, p ImageParams) (string, error) {
	return g.client.GenerateImage(ctx, p.Prompt, p.Format)
}

type webhookImageProcessor struct {
	client *webhook.Client
}

func NewWebhookImageProcessor(client *webhook.Client) ImageProcessor {
	return &webhookImageProcessor{client: client}
}

func (p *webhookImageProcessor) ProcessImage(ctx context.Context, file webhook.File, caption string) (string, error) {
	return p.client.UploadAndProcessImage(ctx, file, caption)
}
