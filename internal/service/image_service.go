package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/repository"
	"github.com/maheshrc27/postcraft/internal/transfer"
)

type ImageService interface {
	Generate(ctx context.Context, req *transfer.GenerateImageRequest) (*models.GeneratedImage, error)
	List(ctx context.Context, postIdeaID string, limit int) ([]*models.GeneratedImage, error)
}

type imageService struct {
	generator ImageGenerator
	images    repository.GeneratedImageRepository
	ideas     repository.PostIdeaRepository
	media     MediaStore
}

// NewImageService wires image generation. media may be nil, in which case
// inline results are stored as data URIs.
func NewImageService(
	generator ImageGenerator,
	images repository.GeneratedImageRepository,
	ideas repository.PostIdeaRepository,
	media MediaStore) ImageService {
	return &imageService{
		generator: generator,
		images:    images,
		ideas:     ideas,
		media:     media,
	}
}

func (s *imageService) params(ctx context.Context, req *transfer.GenerateImageRequest) (ImageParams, error) {
	if req == nil {
		return ImageParams{}, apperr.Validation("", "request body is required")
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return ImageParams{}, apperr.Validation("prompt", "must not be empty")
	}
	format, ok := models.ParseFormat(req.Format)
	if !ok {
		return ImageParams{}, apperr.Validation("format", "must be feed, story or reel")
	}

	var postType models.PostType
	if strings.TrimSpace(req.PostType) != "" {
		if postType, ok = models.ParsePostType(req.PostType); !ok {
			return ImageParams{}, apperr.Validation("postType", "must be organic or cta")
		}
	}
	layout := strings.TrimSpace(req.Layout)

	// The idea is only consulted for what the request leaves out.
	if req.PostIdeaID != "" && (postType == "" || layout == "") {
		idea, err := s.ideas.GetByID(ctx, req.PostIdeaID)
		switch {
		case err == nil:
			if postType == "" {
				postType = idea.PostType
			}
			if layout == "" {
				layout = idea.Layout
			}
		case errors.Is(err, apperr.ErrNotFound):
			slog.Warn("post idea not found, generating without it", "postIdeaId", req.PostIdeaID)
		default:
			return ImageParams{}, err
		}
	}
	if postType == "" {
		postType = models.PostTypeOrganic
	}

	return ImageParams{
		Prompt:   prompt,
		Format:   format,
		PostType: postType,
		Layout:   layout,
	}, nil
}

func (s *imageService) Generate(ctx context.Context, req *transfer.GenerateImageRequest) (*models.GeneratedImage, error) {
	params, err := s.params(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	url, err := s.generator.GenerateImage(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}
	slog.Info("image generated", "provider", s.generator.Name(), "format", params.Format, "duration", time.Since(start))

	metadata := map[string]any{
		"provider": s.generator.Name(),
		"postType": string(params.PostType),
	}
	if params.Layout != "" {
		metadata["layout"] = params.Layout
	}

	image := &models.GeneratedImage{
		PostIdeaID: req.PostIdeaID,
		Prompt:     params.Prompt,
		ImageURL:   PersistDataURI(ctx, s.media, url),
		Format:     params.Format,
		Metadata:   metadata,
	}
	if _, err := s.images.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	return image, nil
}

func (s *imageService) List(ctx context.Context, postIdeaID string, limit int) ([]*models.GeneratedImage, error) {
	return s.images.List(ctx, postIdeaID, limit)
}
