package repository

import (
	"context"
	"time"

	"github.com/maheshrc27/postcraft/internal/models"
)

type PostIdeaRepository interface {
	Create(ctx context.Context, idea *models.PostIdea) (string, error)
	GetByID(ctx context.Context, id string) (*models.PostIdea, error)
	List(ctx context.Context, limit int) ([]*models.PostIdea, error)
	Update(ctx context.Context, id string, apply func(*models.PostIdea)) (*models.PostIdea, error)
}

type postIdeaRepository struct {
	store *memStore[models.PostIdea]
}

func NewPostIdeaRepository() PostIdeaRepository {
	return &postIdeaRepository{
		store: newMemStore(func(i *models.PostIdea) time.Time { return i.CreatedAt }),
	}
}

// Create assigns the id and, when unset, the creation time.
func (r *postIdeaRepository) Create(ctx context.Context, idea *models.PostIdea) (string, error) {
	id, err := newID()
	if err != nil {
		return "", err
	}
	idea.ID = id
	if idea.CreatedAt.IsZero() {
		idea.CreatedAt = time.Now()
	}
	r.store.put(id, *idea)
	return id, nil
}

func (r *postIdeaRepository) GetByID(ctx context.Context, id string) (*models.PostIdea, error) {
	return r.store.get(id)
}

func (r *postIdeaRepository) List(ctx context.Context, limit int) ([]*models.PostIdea, error) {
	return r.store.list(limit, nil), nil
}

func (r *postIdeaRepository) Update(ctx context.Context, id string, apply func(*models.PostIdea)) (*models.PostIdea, error) {
	return r.store.update(id, apply)
}
