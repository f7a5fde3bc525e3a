package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/providers"
	"github.com/maheshrc27/postcraft/internal/repository"
	"github.com/maheshrc27/postcraft/internal/transfer"
)

const (
	defaultIdeaCount = 5
	maxIdeaCount     = 10
)

type IdeaService interface {
	Generate(ctx context.Context, req *transfer.GenerateIdeasRequest) ([]*models.PostIdea, error)
	List(ctx context.Context, limit int) ([]*models.PostIdea, error)
	Update(ctx context.Context, id string, req *transfer.UpdateIdeaRequest) (*models.PostIdea, error)
}

type ideaService struct {
	generator IdeaGenerator
	ideas     repository.PostIdeaRepository
}

func NewIdeaService(generator IdeaGenerator, ideas repository.PostIdeaRepository) IdeaService {
	return &ideaService{
		generator: generator,
		ideas:     ideas,
	}
}

func ideaParams(req *transfer.GenerateIdeasRequest) (providers.IdeaParams, error) {
	if req == nil {
		return providers.IdeaParams{}, apperr.Validation("", "request body is required")
	}
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return providers.IdeaParams{}, apperr.Validation("topic", "must not be empty")
	}
	audience := strings.TrimSpace(req.Audience)
	if audience == "" {
		return providers.IdeaParams{}, apperr.Validation("audience", "must not be empty")
	}
	postType, ok := models.ParsePostType(req.PostType)
	if !ok {
		return providers.IdeaParams{}, apperr.Validation("postType", "must be organic or cta")
	}
	format, ok := models.ParseFormat(req.Format)
	if !ok {
		return providers.IdeaParams{}, apperr.Validation("format", "must be feed, story or reel")
	}
	count := req.Count
	if count == 0 {
		count = defaultIdeaCount
	}
	if count < 1 || count > maxIdeaCount {
		return providers.IdeaParams{}, apperr.Validation("count", "must be between 1 and %d", maxIdeaCount)
	}

	return providers.IdeaParams{
		Topic:    topic,
		Audience: audience,
		PostType: postType,
		Format:   format,
		Count:    count,
	}, nil
}

func (s *ideaService) Generate(ctx context.Context, req *transfer.GenerateIdeasRequest) ([]*models.PostIdea, error) {
	params, err := ideaParams(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	drafts, err := s.generator.GenerateIdeas(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ideas: %w", err)
	}
	slog.Info("ideas generated", "topic", params.Topic, "count", len(drafts), "duration", time.Since(start))

	ideas := make([]*models.PostIdea, 0, len(drafts))
	for _, d := range drafts {
		idea := &models.PostIdea{
			Topic:       params.Topic,
			Audience:    params.Audience,
			PostType:    d.PostType,
			Format:      d.Format,
			Title:       d.Title,
			Description: d.Description,
			Layout:      d.Layout,
			Prompt:      d.Prompt,
		}
		if _, err := s.ideas.Create(ctx, idea); err != nil {
			return nil, fmt.Errorf("failed to store idea: %w", err)
		}
		ideas = append(ideas, idea)
	}

	return ideas, nil
}

func (s *ideaService) List(ctx context.Context, limit int) ([]*models.PostIdea, error) {
	return s.ideas.List(ctx, limit)
}

// Update edits the visual concept of an idea. Only format, post type and
// layout can change.
func (s *ideaService) Update(ctx context.Context, id string, req *transfer.UpdateIdeaRequest) (*models.PostIdea, error) {
	if req == nil {
		return nil, apperr.Validation("", "request body is required")
	}

	var (
		format   models.Format
		postType models.PostType
		ok       bool
	)
	if req.Format != nil {
		if format, ok = models.ParseFormat(*req.Format); !ok {
			return nil, apperr.Validation("format", "must be feed, story or reel")
		}
	}
	if req.PostType != nil {
		if postType, ok = models.ParsePostType(*req.PostType); !ok {
			return nil, apperr.Validation("postType", "must be organic or cta")
		}
	}

	return s.ideas.Update(ctx, id, func(idea *models.PostIdea) {
		if format != "" {
			idea.Format = format
		}
		if postType != "" {
			idea.PostType = postType
		}
		if req.Layout != nil {
			idea.Layout = strings.TrimSpace(*req.Layout)
		}
	})
}
