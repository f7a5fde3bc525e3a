package transfer

import "github.com/maheshrc27/postcraft/internal/models"

type GenerateIdeasRequest struct {
	Topic    string `json:"topic"`
	Audience string `json:"audience"`
	PostType string `json:"postType"`
	Format   string `json:"format"`
	Count    int    `json:"count"`
}

type UpdateIdeaRequest struct {
	Format   *string `json:"format,omitempty"`
	PostType *string `json:"postType,omitempty"`
	Layout   *string `json:"layout,omitempty"`
}

type GenerateImageRequest struct {
	Prompt     string `json:"prompt"`
	Format     string `json:"format"`
	PostIdeaID string `json:"postIdeaId,omitempty"`
	PostType   string `json:"postType,omitempty"`
	Layout     string `json:"layout,omitempty"`
}

type ModifyImageRequest struct {
	ImageID       string        `json:"imageId"`
	Modifications Modifications `json:"modifications"`
}

type Modifications struct {
	Description string `json:"description"`
}

type IdeasResponse struct {
	Success bool              `json:"success"`
	Ideas   []models.PostIdea `json:"ideas"`
	Error   string            `json:"error,omitempty"`
}

type IdeaResponse struct {
	Success bool            `json:"success"`
	Idea    models.PostIdea `json:"idea"`
	Error   string          `json:"error,omitempty"`
}

type ImageResponse struct {
	Success bool                  `json:"success"`
	Image   models.GeneratedImage `json:"image"`
	Error   string                `json:"error,omitempty"`
}

type ImagesResponse struct {
	Success bool                    `json:"success"`
	Images  []models.GeneratedImage `json:"images"`
	Error   string                  `json:"error,omitempty"`
}

type UploadResponse struct {
	Success  bool                 `json:"success"`
	Image    models.UploadedImage `json:"image"`
	Analysis string               `json:"analysis"`
	Error    string               `json:"error,omitempty"`
}

type UploadsResponse struct {
	Success bool                   `json:"success"`
	Images  []models.UploadedImage `json:"images"`
	Error   string                 `json:"error,omitempty"`
}

type ModifyResponse struct {
	Success bool             `json:"success"`
	JobID   string           `json:"jobId"`
	Status  models.JobStatus `json:"status"`
	Error   string           `json:"error,omitempty"`
}

type JobStatusResponse struct {
	Success          bool             `json:"success"`
	Status           models.JobStatus `json:"status"`
	ModifiedImageURL string           `json:"modifiedImageUrl,omitempty"`
	Error            string           `json:"error,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
