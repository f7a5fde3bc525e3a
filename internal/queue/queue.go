package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/postcraft/internal/models"
)

func EnqueueModify(ctx context.Context, asynqClient *asynq.Client, payload ModifyImagePayload) error {
	taskPayload, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeModifyImage, taskPayload)

	info, err := asynqClient.EnqueueContext(ctx, task, asynq.MaxRetry(0))
	if err != nil {
		return fmt.Errorf("failed to enqueue job %s: %w", payload.JobID, err)
	}

	slog.Info("task enqueued", "jobId", payload.JobID, "taskId", info.ID, "queue", info.Queue)
	return nil
}

// AsynqDispatcher hands jobs to a Redis-backed queue. The job stays
// processing until a worker picks it up.
type AsynqDispatcher struct {
	client *asynq.Client
}

func NewAsynqDispatcher(client *asynq.Client) *AsynqDispatcher {
	return &AsynqDispatcher{client: client}
}

func (d *AsynqDispatcher) Dispatch(ctx context.Context, jobID string) (models.JobStatus, error) {
	if err := EnqueueModify(ctx, d.client, ModifyImagePayload{JobID: jobID}); err != nil {
		return "", err
	}
	return models.JobStatusProcessing, nil
}

// InlineDispatcher runs the job before returning, so the first status poll
// already sees the outcome.
type InlineDispatcher struct {
	worker *Worker
}

func NewInlineDispatcher(worker *Worker) *InlineDispatcher {
	return &InlineDispatcher{worker: worker}
}

func (d *InlineDispatcher) Dispatch(ctx context.Context, jobID string) (models.JobStatus, error) {
	if err := d.worker.Process(ctx, jobID); err != nil {
		return "", err
	}
	job, err := d.worker.jobs.Get(ctx, jobID)
	if err != nil {
		return "", err
	}
	return job.Status, nil
}
