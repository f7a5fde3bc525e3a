package repository

import (
	"context"
	"time"

	"github.com/maheshrc27/postcraft/internal/models"
)

type UploadedImageRepository interface {
	Create(ctx context.Context, img *models.UploadedImage) (string, error)
	GetByID(ctx context.Context, id string) (*models.UploadedImage, error)
	List(ctx context.Context, limit int) ([]*models.UploadedImage, error)
	Update(ctx context.Context, id string, apply func(*models.UploadedImage)) (*models.UploadedImage, error)
	Remove(ctx context.Context, id string) error
}

type uploadedImageRepository struct {
	store *memStore[models.UploadedImage]
}

func NewUploadedImageRepository() UploadedImageRepository {
	return &uploadedImageRepository{
		store: newMemStore(func(i *models.UploadedImage) time.Time { return i.CreatedAt }),
	}
}

func (r *uploadedImageRepository) Create(ctx context.Context, img *models.UploadedImage) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}
	img.ID = id
	if img.CreatedAt.IsZero() {
		img.CreatedAt = time.Now()
	}
	if img.Status == "" {
		img.Status = models.UploadStatusUploaded
	}
	r.store.put(id, *img)
	return id, nil
}

func (r *uploadedImageRepository) GetByID(ctx context.Context, id string) (*models.UploadedImage, error) {
	return r.store.get(id)
}

func (r *uploadedImageRepository) List(ctx context.Context, limit int) ([]*models.UploadedImage, error) {
	return r.store.list(limit, nil), nil
}

func (r *uploadedImageRepository) Update(ctx context.Context, id string, apply func(*models.UploadedImage)) (*models.UploadedImage, error) {
	return r.store.update(id, apply)
}

func (r *uploadedImageRepository) Remove(ctx context.Context, id string) error {
	return r.store.remove(id)
}
