package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/repository"
)

// JobService owns the modification job state machine and keeps the uploaded
// image in step with it.
type JobService interface {
	Get(ctx context.Context, jobID string) (*models.ModificationJob, error)
	Complete(ctx context.Context, jobID, modifiedURL string) error
	Fail(ctx context.Context, jobID, reason string) error
	FailStale(ctx context.Context, olderThan time.Duration) (int, error)
}

type jobService struct {
	jobs    repository.ModificationJobRepository
	uploads repository.UploadedImageRepository
}

func NewJobService(jobs repository.ModificationJobRepository, uploads repository.UploadedImageRepository) JobService {
	return &jobService{
		jobs:    jobs,
		uploads: uploads,
	}
}

func (s *jobService) Get(ctx context.Context, jobID string) (*models.ModificationJob, error) {
	return s.jobs.GetByID(ctx, jobID)
}

func (s *jobService) Complete(ctx context.Context, jobID, modifiedURL string) error {
	var finished models.JobStatus
	job, err := s.jobs.Update(ctx, jobID, func(j *models.ModificationJob) {
		if j.Status.Terminal() {
			finished = j.Status
			return
		}
		j.Status = models.JobStatusCompleted
		j.ModifiedImageURL = modifiedURL
		j.Error = ""
	})
	if err != nil {
		return fmt.Errorf("failed to complete job %s: %w", jobID, err)
	}
	if finished != "" {
		slog.Warn("job already finished, result dropped", "jobId", jobID, "status", finished)
		return nil
	}

	_, err = s.uploads.Update(ctx, job.ImageID, func(img *models.UploadedImage) {
		if img.JobID != jobID {
			return
		}
		img.Status = models.UploadStatusModified
		img.ModifiedURL = modifiedURL
	})
	if err != nil {
		// The image may have been removed while the job ran.
		slog.Warn("job completed for missing image", "jobId", jobID, "imageId", job.ImageID, "error", err)
	}
	return nil
}

func (s *jobService) Fail(ctx context.Context, jobID, reason string) error {
	var finished models.JobStatus
	job, err := s.jobs.Update(ctx, jobID, func(j *models.ModificationJob) {
		if j.Status.Terminal() {
			finished = j.Status
			return
		}
		j.Status = models.JobStatusFailed
		j.Error = reason
	})
	if err != nil {
		return fmt.Errorf("failed to fail job %s: %w", jobID, err)
	}
	if finished != "" {
		slog.Warn("job already finished, failure dropped", "jobId", jobID, "status", finished, "reason", reason)
		return nil
	}

	_, err = s.uploads.Update(ctx, job.ImageID, func(img *models.UploadedImage) {
		if img.JobID != jobID || img.Status != models.UploadStatusProcessing {
			return
		}
		img.Status = models.UploadStatusUploaded
	})
	if err != nil {
		slog.Warn("job failed for missing image", "jobId", jobID, "imageId", job.ImageID, "error", err)
	}
	return nil
}

// FailStale fails every job that has been processing for longer than
// olderThan and returns how many it touched.
func (s *jobService) FailStale(ctx context.Context, olderThan time.Duration) (int, error) {
	stale, err := s.jobs.ListStale(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}

	reason := fmt.Sprintf("job did not finish within %s", olderThan)
	failed := 0
	for _, job := range stale {
		if err := s.Fail(ctx, job.ID, reason); err != nil {
			slog.Info(err.Error())
			continue
		}
		failed++
	}
	return failed, nil
}
