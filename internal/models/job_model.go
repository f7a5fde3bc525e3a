package models

import "time"

type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Terminal reports whether polling for this status can stop.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// ModificationJob tracks one modify request against an UploadedImage.
type ModificationJob struct {
	ID               string    `json:"id"`
	ImageID          string    `json:"imageId"`
	Description      string    `json:"description"`
	Status           JobStatus `json:"status"`
	ModifiedImageURL string    `json:"modifiedImageUrl,omitempty"`
	Error            string    `json:"error,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}
