package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/models"
	"github.com/maheshrc27/postcraft/internal/repository"
	"github.com/maheshrc27/postcraft/internal/transfer"
	"github.com/maheshrc27/postcraft/internal/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadFixture struct {
	uploads    repository.UploadedImageRepository
	jobs       repository.ModificationJobRepository
	dispatcher *fakeDispatcher
	svc        UploadService
}

func newUploadFixture(analyzer ImageAnalyzer, maxSize int64) *uploadFixture {
	f := &uploadFixture{
		uploads:    repository.NewUploadedImageRepository(),
		jobs:       repository.NewModificationJobRepository(),
		dispatcher: &fakeDispatcher{status: models.JobStatusProcessing},
	}
	f.svc = NewUploadService(f.uploads, f.jobs, analyzer, f.dispatcher, maxSize)
	return f
}

func TestUploadStoresDataURIAndAnalysis(t *testing.T) {
	f := newUploadFixture(&fakeAnalyzer{text: "bright clinic photo"}, 10<<20)

	img, analysis, err := f.svc.Upload(context.Background(), webhook.File{Name: "a.png", Data: tinyPNG(t)})
	require.NoError(t, err)

	assert.Equal(t, "bright clinic photo", analysis)
	assert.True(t, strings.HasPrefix(img.OriginalURL, "data:image/png;base64,"))
	assert.Equal(t, models.UploadStatusUploaded, img.Status)
	assert.Equal(t, "bright clinic photo", img.Modifications["analysis"])
}

func TestUploadAnalysisFailureFallsBack(t *testing.T) {
	f := newUploadFixture(&fakeAnalyzer{err: errors.New("quota")}, 0)

	_, analysis, err := f.svc.Upload(context.Background(), webhook.File{Data: tinyPNG(t)})
	require.NoError(t, err)
	assert.Equal(t, NoAnalysis, analysis)

	f = newUploadFixture(nil, 0)
	_, analysis, err = f.svc.Upload(context.Background(), webhook.File{Data: tinyPNG(t)})
	require.NoError(t, err)
	assert.Equal(t, NoAnalysis, analysis)
}

func TestUploadRejections(t *testing.T) {
	f := newUploadFixture(nil, 16)

	var verr *apperr.ValidationError
	_, _, err := f.svc.Upload(context.Background(), webhook.File{Data: tinyPNG(t)})
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.TooLarge)

	_, _, err = f.svc.Upload(context.Background(), webhook.File{})
	require.ErrorAs(t, err, &verr)
	assert.False(t, verr.TooLarge)

	_, _, err = f.svc.Upload(context.Background(), webhook.File{Data: []byte("not an image")})
	require.ErrorAs(t, err, &verr)
	assert.False(t, verr.TooLarge)
}

func TestRequestModificationStartsJob(t *testing.T) {
	ctx := context.Background()
	f := newUploadFixture(nil, 0)
	img, _, err := f.svc.Upload(ctx, webhook.File{Data: tinyPNG(t)})
	require.NoError(t, err)

	job, err := f.svc.RequestModification(ctx, &transfer.ModifyImageRequest{
		ImageID:       img.ID,
		Modifications: transfer.Modifications{Description: "warmer tones"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, models.JobStatusProcessing, job.Status)
	assert.Equal(t, []string{job.ID}, f.dispatcher.jobs)

	stored, err := f.uploads.GetByID(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusProcessing, stored.Status)
	assert.Equal(t, job.ID, stored.JobID)
	assert.Equal(t, "warmer tones", stored.Modifications["description"])
	assert.Equal(t, NoAnalysis, stored.Modifications["analysis"])

	_, err = f.svc.RequestModification(ctx, &transfer.ModifyImageRequest{
		ImageID:       img.ID,
		Modifications: transfer.Modifications{Description: "again"},
	})
	var verr *apperr.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestRequestModificationValidation(t *testing.T) {
	ctx := context.Background()
	f := newUploadFixture(nil, 0)

	var verr *apperr.ValidationError
	_, err := f.svc.RequestModification(ctx, &transfer.ModifyImageRequest{Modifications: transfer.Modifications{Description: "x"}})
	assert.ErrorAs(t, err, &verr)
	_, err = f.svc.RequestModification(ctx, &transfer.ModifyImageRequest{ImageID: "a"})
	assert.ErrorAs(t, err, &verr)
	_, err = f.svc.RequestModification(ctx, &transfer.ModifyImageRequest{ImageID: "missing", Modifications: transfer.Modifications{Description: "x"}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Empty(t, f.dispatcher.jobs)
}

func TestRequestModificationDispatchFailureReverts(t *testing.T) {
	ctx := context.Background()
	f := newUploadFixture(nil, 0)
	f.dispatcher.err = errors.New("queue unavailable")

	img, _, err := f.svc.Upload(ctx, webhook.File{Data: tinyPNG(t)})
	require.NoError(t, err)

	_, err = f.svc.RequestModification(ctx, &transfer.ModifyImageRequest{
		ImageID:       img.ID,
		Modifications: transfer.Modifications{Description: "x"},
	})
	require.Error(t, err)
	require.Len(t, f.dispatcher.jobs, 1)

	job, err := f.jobs.GetByID(ctx, f.dispatcher.jobs[0])
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Equal(t, "queue unavailable", job.Error)

	stored, err := f.uploads.GetByID(ctx, img.ID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusUploaded, stored.Status)
}

func TestJobServiceLifecycle(t *testing.T) {
	ctx := context.Background()
	uploads := repository.NewUploadedImageRepository()
	jobs := repository.NewModificationJobRepository()
	svc := NewJobService(jobs, uploads)

	imgID, err := uploads.Create(ctx, &models.UploadedImage{OriginalURL: "data:image/png;base64,AA", Status: models.UploadStatusProcessing})
	require.NoError(t, err)
	jobID, err := jobs.Create(ctx, &models.ModificationJob{ImageID: imgID})
	require.NoError(t, err)
	_, err = uploads.Update(ctx, imgID, func(i *models.UploadedImage) { i.JobID = jobID })
	require.NoError(t, err)

	require.NoError(t, svc.Complete(ctx, jobID, "https://x/out.png"))

	job, err := svc.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
	assert.Equal(t, "https://x/out.png", job.ModifiedImageURL)

	img, err := uploads.GetByID(ctx, imgID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusModified, img.Status)
	assert.Equal(t, "https://x/out.png", img.ModifiedURL)

	assert.ErrorIs(t, svc.Complete(ctx, "missing", "u"), apperr.ErrNotFound)
}

func TestJobServiceCompleteAfterImageRemoved(t *testing.T) {
	ctx := context.Background()
	uploads := repository.NewUploadedImageRepository()
	jobs := repository.NewModificationJobRepository()
	svc := NewJobService(jobs, uploads)

	jobID, err := jobs.Create(ctx, &models.ModificationJob{ImageID: "removed"})
	require.NoError(t, err)

	require.NoError(t, svc.Complete(ctx, jobID, "https://x/out.png"))
	job, err := svc.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusCompleted, job.Status)
}

func TestJobServiceKeepsFirstTerminalStatus(t *testing.T) {
	ctx := context.Background()
	uploads := repository.NewUploadedImageRepository()
	jobs := repository.NewModificationJobRepository()
	svc := NewJobService(jobs, uploads)

	imgID, err := uploads.Create(ctx, &models.UploadedImage{Status: models.UploadStatusProcessing})
	require.NoError(t, err)
	jobID, err := jobs.Create(ctx, &models.ModificationJob{ImageID: imgID})
	require.NoError(t, err)
	_, err = uploads.Update(ctx, imgID, func(i *models.UploadedImage) { i.JobID = jobID })
	require.NoError(t, err)

	require.NoError(t, svc.Fail(ctx, jobID, "timed out"))
	require.NoError(t, svc.Complete(ctx, jobID, "https://x/late.png"))

	job, err := svc.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, job.Status)
	assert.Equal(t, "timed out", job.Error)
	assert.Empty(t, job.ModifiedImageURL)

	img, err := uploads.GetByID(ctx, imgID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusUploaded, img.Status)
	assert.Empty(t, img.ModifiedURL)

	require.NoError(t, svc.Fail(ctx, jobID, "again"))
	job, err = svc.Get(ctx, jobID)
	require.NoError(t, err)
	assert.Equal(t, "timed out", job.Error)
}

func TestJobServiceFailStale(t *testing.T) {
	ctx := context.Background()
	uploads := repository.NewUploadedImageRepository()
	jobs := repository.NewModificationJobRepository()
	svc := NewJobService(jobs, uploads)

	imgID, err := uploads.Create(ctx, &models.UploadedImage{Status: models.UploadStatusProcessing})
	require.NoError(t, err)
	staleID, err := jobs.Create(ctx, &models.ModificationJob{ImageID: imgID, CreatedAt: time.Now().Add(-time.Hour)})
	require.NoError(t, err)
	_, err = uploads.Update(ctx, imgID, func(i *models.UploadedImage) { i.JobID = staleID })
	require.NoError(t, err)
	freshID, err := jobs.Create(ctx, &models.ModificationJob{ImageID: "other"})
	require.NoError(t, err)

	n, err := svc.FailStale(ctx, 10*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stale, err := svc.Get(ctx, staleID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusFailed, stale.Status)
	assert.NotEmpty(t, stale.Error)

	fresh, err := svc.Get(ctx, freshID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusProcessing, fresh.Status)

	img, err := uploads.GetByID(ctx, imgID)
	require.NoError(t, err)
	assert.Equal(t, models.UploadStatusUploaded, img.Status)
}
