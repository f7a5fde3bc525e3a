package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostIdeaListNewestFirstWithDefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewPostIdeaRepository()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 60; i++ {
		_, err := repo.Create(ctx, &models.PostIdea{Title: fmt.Sprintf("idea %d", i), CreatedAt: base.Add(time.Duration(i) * time.Minute)})
		require.NoError(t, err)
	}

	ideas, err := repo.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, ideas, DefaultLimit)
	assert.Equal(t, "idea 59", ideas[0].Title)
	assert.Equal(t, "idea 10", ideas[DefaultLimit-1].Title)

	ideas, err = repo.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, ideas, 3)
}

func TestSameInstantKeepsReverseInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewPostIdeaRepository()
	now := time.Now()

	for _, title := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, &models.PostIdea{Title: title, CreatedAt: now})
		require.NoError(t, err)
	}

	ideas, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, ideas, 3)
	assert.Equal(t, "third", ideas[0].Title)
	assert.Equal(t, "first", ideas[2].Title)
}

func TestPostIdeaUpdateAndCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewPostIdeaRepository()

	idea := &models.PostIdea{Title: "A", Format: models.FormatFeed}
	id, err := repo.Create(ctx, idea)
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Equal(t, id, idea.ID)
	assert.False(t, idea.CreatedAt.IsZero())

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	got.Title = "mutated"

	updated, err := repo.Update(ctx, id, func(i *models.PostIdea) { i.Layout = "Hero" })
	require.NoError(t, err)
	assert.Equal(t, "A", updated.Title)
	assert.Equal(t, "Hero", updated.Layout)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	_, err = repo.Update(ctx, "missing", func(*models.PostIdea) {})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestGeneratedImageListFiltersByIdea(t *testing.T) {
	ctx := context.Background()
	repo := NewGeneratedImageRepository()

	for _, ideaID := range []string{"a", "b", "a", ""} {
		_, err := repo.Create(ctx, &models.GeneratedImage{PostIdeaID: ideaID, ImageURL: "https://x"})
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	onlyA, err := repo.List(ctx, "a", 0)
	require.NoError(t, err)
	assert.Len(t, onlyA, 2)
	for _, img := range onlyA {
		assert.Equal(t, "a", img.PostIdeaID)
	}
}

func TestUploadedImageLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := NewUploadedImageRepository()

	id, err := repo.Create(ctx, &models.UploadedImage{OriginalURL: "data:image/png;base64,AAAA"})
	require.NoError(t, err)

	img, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusUploaded, img.Status)

	require.NoError(t, repo.Remove(ctx, id))
	assert.ErrorIs(t, repo.Remove(ctx, id), apperr.ErrNotFound)
}

func TestModificationJobListStale(t *testing.T) {
	ctx := context.Background()
	repo := NewModificationJobRepository()
	old := time.Now().Add(-time.Hour)

	staleID, err := repo.Create(ctx, &models.ModificationJob{ImageID: "i1", CreatedAt: old})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.ModificationJob{ImageID: "i2", CreatedAt: old, Status: models.JobStatusCompleted})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.ModificationJob{ImageID: "i3"})
	require.NoError(t, err)

	stale, err := repo.ListStale(ctx, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, staleID, stale[0].ID)

	updated, err := repo.Update(ctx, staleID, func(j *models.ModificationJob) { j.Status = models.JobStatusFailed })
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt.After(old))
}
