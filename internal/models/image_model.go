package models

import "time"

type GeneratedImage struct {
	ID         string         `json:"id"`
	PostIdeaID string         `json:"postIdeaId,omitempty"`
	Prompt     string         `json:"prompt"`
	ImageURL   string         `json:"imageUrl"`
	Format     Format         `json:"format"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"createdAt"`
}

type UploadStatus string

const (
	UploadStatusUploaded   UploadStatus = "uploaded"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusModified   UploadStatus = "modified"
)

type UploadedImage struct {
	ID            string         `json:"id"`
	OriginalURL   string         `json:"originalUrl"`
	ModifiedURL   string         `json:"modifiedUrl,omitempty"`
	JobID         string         `json:"jobId,omitempty"`
	Status        UploadStatus   `json:"status"`
	Modifications map[string]any `json:"modifications,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
}
