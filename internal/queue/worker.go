package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/types"
	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postcraft/internal/extract"
	"github.com/maheshrc27/postcraft/internal/service"
	"github.com/maheshrc27/postcraft/internal/webhook"
)

func (w *Worker) HandleModifyImageTask(ctx context.Context, task *asynq.Task) error {
	var payload ModifyImagePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("invalid payload: %v: %w", err, asynq.SkipRetry)
	}

	return w.Process(ctx, payload.JobID)
}

// Process runs one modification job. Workflow failures are recorded on the
// job; the returned error is reserved for jobs that could not be read or
// updated at all.
func (w *Worker) Process(ctx context.Context, jobID string) error {
	job, err := w.jobs.Get(ctx, jobID)
	if err != nil {
		return fmt.Errorf("failed to load job %s: %w", jobID, err)
	}
	if job.Status.Terminal() {
		slog.Info("skipping finished job", "jobId", jobID, "status", job.Status)
		return nil
	}

	img, err := w.uploads.GetByID(ctx, job.ImageID)
	if err != nil {
		return w.jobs.Fail(ctx, jobID, "uploaded image no longer exists")
	}

	data, mime, err := extract.DecodeDataURI(img.OriginalURL)
	if err != nil {
		return w.jobs.Fail(ctx, jobID, err.Error())
	}

	name := img.ID
	if kind, err := filetype.Match(data); err == nil && kind != types.Unknown {
		name += "." + kind.Extension
	}

	start := time.Now()
	url, err := w.processor.ProcessImage(ctx, webhook.File{Name: name, ContentType: mime, Data: data}, job.Description)
	if err != nil {
		slog.Error("modification failed", "jobId", jobID, "imageId", img.ID, "error", err)
		return w.jobs.Fail(ctx, jobID, err.Error())
	}

	url = service.PersistDataURI(ctx, w.media, url)
	slog.Info("modification completed", "jobId", jobID, "imageId", img.ID, "duration", time.Since(start))

	return w.jobs.Complete(ctx, jobID, url)
}
