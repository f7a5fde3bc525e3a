package queue

import (
	"github.com/maheshrc27/postcraft/internal/repository"
	"github.com/maheshrc27/postcraft/internal/service"
)

// Worker runs modification jobs.
type Worker struct {
	uploads   repository.UploadedImageRepository
	jobs      service.JobService
	processor service.ImageProcessor
	media     service.MediaStore
}

// NewWorker builds a Worker. media may be nil.
func NewWorker(
	uploads repository.UploadedImageRepository,
	jobs service.JobService,
	processor service.ImageProcessor,
	media service.MediaStore) *Worker {
	return &Worker{
		uploads:   uploads,
		jobs:      jobs,
		processor: processor,
		media:     media,
	}
}

const TaskTypeModifyImage = "image:modify"

type ModifyImagePayload struct {
	JobID string `json:"job_id"`
}
