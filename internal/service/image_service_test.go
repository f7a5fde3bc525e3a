package service

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/repository"
	"github.com/maheshrc27/postcraft/internal/transfer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImageGenerateSeedsFromIdea(t *testing.T) {
	ctx := context.Background()
	ideas := repository.NewPostIdeaRepository()
	ideaID, err := ideas.Create(ctx, &models.PostIdea{PostType: models.PostTypeCTA, Layout: "Hero+Badge"})
	require.NoError(t, err)

	gen := &fakeImageGenerator{url: "https://cdn.example.com/a.png"}
	svc := NewImageService(gen, repository.NewGeneratedImageRepository(), ideas, nil)

	img, err := svc.Generate(ctx, &transfer.GenerateImageRequest{Prompt: "serum", Format: "feed", PostIdeaID: ideaID})
	require.NoError(t, err)

	assert.Equal(t, models.PostTypeCTA, gen.got.PostType)
	assert.Equal(t, "Hero+Badge", gen.got.Layout)
	assert.Equal(t, "https://cdn.example.com/a.png", img.ImageURL)
	assert.Equal(t, ideaID, img.PostIdeaID)
	assert.Equal(t, "fake", img.Metadata["provider"])
	assert.Equal(t, "cta", img.Metadata["postType"])
}

func TestImageGenerateRequestWinsOverIdea(t *testing.T) {
	ctx := context.Background()
	ideas := repository.NewPostIdeaRepository()
	ideaID, err := ideas.Create(ctx, &models.PostIdea{PostType: models.PostTypeCTA, Layout: "Split"})
	require.NoError(t, err)

	gen := &fakeImageGenerator{url: "https://x/y.png"}
	svc := NewImageService(gen, repository.NewGeneratedImageRepository(), ideas, nil)

	_, err = svc.Generate(ctx, &transfer.GenerateImageRequest{
		Prompt: "serum", Format: "story", PostIdeaID: ideaID, PostType: "organic", Layout: "Grid",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PostTypeOrganic, gen.got.PostType)
	assert.Equal(t, "Grid", gen.got.Layout)
	assert.Equal(t, models.FormatStory, gen.got.Format)
}

func TestImageGenerateUnknownIdeaIsIgnored(t *testing.T) {
	gen := &fakeImageGenerator{url: "https://x/y.png"}
	svc := NewImageService(gen, repository.NewGeneratedImageRepository(), repository.NewPostIdeaRepository(), nil)

	img, err := svc.Generate(context.Background(), &transfer.GenerateImageRequest{Prompt: "p", Format: "reel", PostIdeaID: "gone"})
	require.NoError(t, err)
	assert.Equal(t, models.PostTypeOrganic, gen.got.PostType)
	assert.Equal(t, "gone", img.PostIdeaID)
}

func TestImageGenerateValidation(t *testing.T) {
	gen := &fakeImageGenerator{}
	svc := NewImageService(gen, repository.NewGeneratedImageRepository(), repository.NewPostIdeaRepository(), nil)

	for _, req := range []*transfer.GenerateImageRequest{
		{Prompt: "", Format: "feed"},
		{Prompt: "p", Format: ""},
		{Prompt: "p", Format: "feed", PostType: "ad"},
	} {
		_, err := svc.Generate(context.Background(), req)
		var verr *apperr.ValidationError
		assert.ErrorAs(t, err, &verr)
	}
	assert.Zero(t, gen.calls)
}

func TestImageGeneratePersistsInlineData(t *testing.T) {
	ctx := context.Background()
	png := tinyPNG(t)
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)

	store := &fakeStore{url: "https://media.example.com/images/abc.png"}
	images := repository.NewGeneratedImageRepository()
	svc := NewImageService(&fakeImageGenerator{url: uri}, images, repository.NewPostIdeaRepository(), store)

	img, err := svc.Generate(ctx, &transfer.GenerateImageRequest{Prompt: "p", Format: "feed"})
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/images/abc.png", img.ImageURL)
	require.Len(t, store.data, 1)
	assert.Equal(t, png, store.data[0])
	assert.Equal(t, "image/png", store.mime[0])

	listed, err := svc.List(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestPersistDataURIKeepsValueOnFailure(t *testing.T) {
	ctx := context.Background()
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(tinyPNG(t))

	assert.Equal(t, uri, PersistDataURI(ctx, nil, uri))
	assert.Equal(t, uri, PersistDataURI(ctx, &fakeStore{err: errors.New("down")}, uri))

	store := &fakeStore{url: "unused"}
	assert.Equal(t, "https://x/y.png", PersistDataURI(ctx, store, "https://x/y.png"))
	assert.Empty(t, store.data)
}
