package repository

import (
	"context"
	"time"

	"github.com/maheshrc27/postcraft/internal/models"
)

type GeneratedImageRepository interface {
	Create(ctx context.Context, img *models.GeneratedImage) (string, error)
	// List filters by post idea when postIdeaID is not empty.
	List(ctx context.Context, postIdeaID string, limit int) ([]*models.GeneratedImage, error)
}

type generatedImageRepository struct {
	store *memStore[models.GeneratedImage]
}

func NewGeneratedImageRepository() GeneratedImageRepository {
	return &generatedImageRepository{
		store: newMemStore(func(i *models.GeneratedImage) time.Time { return i.CreatedAt }),
	}
}

func (r *generatedImageRepository) Create(ctx context.Context, img *models.GeneratedImage) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}
	img.ID = id
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now()
	}
	r.store.put(id, *img)
	return id, nil
}

func (r *generatedImageRepository) List(ctx context.Context, postIdeaID string, limit int) ([]*models.GeneratedImage, error) {
	var keep func(*models.GeneratedImage) bool
	if postIdeaID != "" {
		keep = func(i *models.GeneratedImage) bool { return i.PostIdeaID == postIdeaID }
	}
	return r.store.list(limit, keep), nil
}
