package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"sync"

	"github.com/h2non/filetype"
	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/extract"
	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/repository"
	"github.com/maheshrc27/postcraft/internal/transfer"
	"github.com/maheshrc27/postcraft/internal/webhook"
)

// NoAnalysis is stored when the analyzer is missing or fails.
const NoAnalysis = "Image analysis could not be performed."

// ModifyDispatcher starts a modification job and reports its status right
// after dispatch.
type ModifyDispatcher interface {
	Dispatch(ctx context.Context, jobID string) (models.JobStatus, error)
}

type UploadService interface {
	Upload(ctx context.Context, file webhook.File) (*models.UploadedImage, string, error)
	List(ctx context.Context, limit int) ([]*models.UploadedImage, error)
	Remove(ctx context.Context, id string) error
	RequestModification(ctx context.Context, req *transfer.ModifyImageRequest) (*models.ModificationJob, error)
}

type uploadService struct {
	uploads    repository.UploadedImageRepository
	jobs       repository.ModificationJobRepository
	lifecycle  JobService
	analyzer   ImageAnalyzer
	dispatcher ModifyDispatcher
	maxSize    int64

	// mu serialises the processing check and the status change.
	mu sync.Mutex
}

// NewUploadService wires uploads and modification requests. analyzer may be
// nil.
func NewUploadService(
	uploads repository.UploadedImageRepository,
	jobs repository.ModificationJobRepository,
	analyzer ImageAnalyzer,
	dispatcher ModifyDispatcher,
	maxSize int64) UploadService {
	return &uploadService{
		uploads:    uploads,
		jobs:       jobs,
		lifecycle:  NewJobService(jobs, uploads),
		analyzer:   analyzer,
		dispatcher: dispatcher,
		maxSize:    maxSize,
	}
}

func (s *uploadService) Upload(ctx context.Context, file webhook.File) (*models.UploadedImage, string, error) {
	size := int64(len(file.Data))
	if s.maxSize > 0 && size > s.maxSize {
		return nil, "", &apperr.ValidationError{
			Field:    "image",
			Message:  fmt.Sprintf("file is %d bytes, the limit is %d", size, s.maxSize),
			TooLarge: true,
		}
	}
	if size == 0 {
		return nil, "", apperr.Validation("image", "file is empty")
	}
	if !filetype.IsImage(file.Data) {
		return nil, "", apperr.Validation("image", "file is not a supported image")
	}

	mime := extract.SniffMIME(file.Data, "image/jpeg")
	analysis := NoAnalysis
	if s.analyzer != nil {
		text, err := s.analyzer.AnalyzeImage(ctx, file.Data, mime)
		if err != nil {
			slog.Warn("image analysis failed", "file", file.Name, "error", err)
		} else if strings.TrimSpace(text) != "" {
			analysis = text
		}
	}

	img := &models.UploadedImage{
		OriginalURL:   extract.DataURI(file.Data, mime),
		Status:        models.UploadStatusUploaded,
		Modifications: map[string]any{"analysis": analysis},
	}
	if _, err := s.uploads.Create(ctx, img); err != nil {
		return nil, "", fmt.Errorf("failed to store upload: %w", err)
	}

	slog.Info("image uploaded", "id", img.ID, "file", file.Name, "size", size, "mime", mime)
	return img, analysis, nil
}

func (s *uploadService) List(ctx context.Context, limit int) ([]*models.UploadedImage, error) {
	return s.uploads.List(ctx, limit)
}

func (s *uploadService) Remove(ctx context.Context, id string) error {
	return s.uploads.Remove(ctx, id)
}

func (s *uploadService) RequestModification(ctx context.Context, req *transfer.ModifyImageRequest) (*models.ModificationJob, error) {
	if req == nil || strings.TrimSpace(req.ImageID) == "" {
		return nil, apperr.Validation("imageId", "must not be empty")
	}
	description := strings.TrimSpace(req.Modifications.Description)
	if description == "" {
		return nil, apperr.Validation("modifications.description", "must not be empty")
	}

	job, err := s.startJob(ctx, req.ImageID, description)
	if err != nil {
		return nil, err
	}

	status, err := s.dispatcher.Dispatch(ctx, job.ID)
	if err != nil {
		slog.Info(err.Error())
		if failErr := s.lifecycle.Fail(ctx, job.ID, err.Error()); failErr != nil {
			slog.Info(failErr.Error())
		}
		return nil, fmt.Errorf("failed to dispatch job %s: %w", job.ID, err)
	}
	job.Status = status

	return job, nil
}

func (s *uploadService) startJob(ctx context.Context, imageID, description string) (*models.ModificationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	img, err := s.uploads.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img.Status == models.UploadStatusProcessing {
		return nil, apperr.Validation("imageId", "image is already being modified")
	}

	job := &models.ModificationJob{
		ImageID:     imageID,
		Description: description,
		Status:      models.JobStatusProcessing,
	}
	if _, err := s.jobs.Create(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	_, err = s.uploads.Update(ctx, imageID, func(img *models.UploadedImage) {
		mods := maps.Clone(img.Modifications)
		if mods == nil {
			mods = map[string]any{}
		}
		mods["description"] = description
		img.Modifications = mods
		img.Status = models.UploadStatusProcessing
		img.JobID = job.ID
	})
	if err != nil {
		return nil, err
	}

	return job, nil
}
