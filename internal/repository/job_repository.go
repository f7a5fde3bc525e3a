package repository

import (
	"context"
	"time"

	"github.com/maheshrc27/postcraft/internal/models"
)

type ModificationJobRepository interface {
	Create(ctx context.Context, job *models.ModificationJob) (string, error)
	GetByID(ctx context.Context, id string) (*models.ModificationJob, error)
	Update(ctx context.Context, id string, apply func(*models.ModificationJob)) (*models.ModificationJob, error)
	// ListStale returns jobs still processing whose last update is before cutoff.
	ListStale(ctx context.Context, cutoff time.Time) ([]*models.ModificationJob, error)
}

type modificationJobRepository struct {
	store *memStore[models.ModificationJob]
}

func NewModificationJobRepository() ModificationJobRepository {
	return &modificationJobRepository{
		store: newMemStore(func(j *models.ModificationJob) time.Time { return j.CreatedAt }),
	}
}

func (r *modificationJobRepository) Create(ctx context.Context, job *models.ModificationJob) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}
	now := time.Now()
	job.ID = id
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = job.CreatedAt
	}
	if job.Status == "" {
		job.Status = models.JobStatusProcessing
	}
	r.store.put(id, *job)
	return id, nil
}

func (r *modificationJobRepository) GetByID(ctx context.Context, id string) (*models.ModificationJob, error) {
	return r.store.get(id)
}

// Update stamps UpdatedAt after apply runs.
func (r *modificationJobRepository) Update(ctx context.Context, id string, apply func(*models.ModificationJob)) (*models.ModificationJob, error) {
	return r.store.update(id, func(j *models.ModificationJob) {
		apply(j)
		j.UpdatedAt = time.Now()
	})
}

func (r *modificationJobRepository) ListStale(ctx context.Context, cutoff time.Time) ([]*models.ModificationJob, error) {
	return r.store.list(int(^uint(0)>>1), func(j *models.ModificationJob) bool {
		return j.Status == models.JobStatusProcessing && j.UpdatedAt.Before(cutoff)
	}), nil
}
