package handlers

import (
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/service"
	"github.com/maheshrc27/postcraft/internal/transfer"
	"github.com/maheshrc27/postcraft/internal/webhook"
)

type ImageHandler struct {
	images  service.ImageService
	uploads service.UploadService
	jobs    service.JobService
	maxSize int64
}

func NewImageHandler(
	images service.ImageService,
	uploads service.UploadService,
	jobs service.JobService,
	maxSize int64) *ImageHandler {
	return &ImageHandler{
		images:  images,
		uploads: uploads,
		jobs:    jobs,
		maxSize: maxSize,
	}
}

func (h *ImageHandler) GenerateImage(c *fiber.Ctx) error {
	var req transfer.GenerateImageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	image, err := h.images.Generate(c.Context(), &req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(transfer.ImageResponse{
		Success: true,
		Image:   *image,
	})
}

func (h *ImageHandler) ListImages(c *fiber.Ctx) error {
	images, err := h.images.List(c.Context(), c.Query("postIdeaId"), c.QueryInt("limit", 0))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(transfer.ImagesResponse{
		Success: true,
		Images:  values(images),
	})
}

func (h *ImageHandler) UploadImage(c *fiber.Ctx) error {
	fh, err := c.FormFile("image")
	if err != nil {
		slog.Info(err.Error())
		return badRequest(c, "No image file provided")
	}
	if h.maxSize > 0 && fh.Size > h.maxSize {
		return errorResponse(c, &apperr.ValidationError{
			Field:    "image",
			Message:  "file exceeds the upload limit",
			TooLarge: true,
		})
	}

	f, err := fh.Open()
	if err != nil {
		return errorResponse(c, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return errorResponse(c, err)
	}

	image, analysis, err := h.uploads.Upload(c.Context(), webhook.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(transfer.UploadResponse{
		Success:  true,
		Image:    *image,
		Analysis: analysis,
	})
}

func (h *ImageHandler) ModifyImage(c *fiber.Ctx) error {
	var req transfer.ModifyImageRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	job, err := h.uploads.RequestModification(c.Context(), &req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(transfer.ModifyResponse{
		Success: true,
		JobID:   job.ID,
		Status:  job.Status,
	})
}

func (h *ImageHandler) JobStatus(c *fiber.Ctx) error {
	job, err := h.jobs.Get(c.Context(), c.Params("jobId"))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(transfer.JobStatusResponse{
		Success:          true,
		Status:           job.Status,
		ModifiedImageURL: job.ModifiedImageURL,
		Error:            job.Error,
	})
}

func (h *ImageHandler) ListUploads(c *fiber.Ctx) error {
	images, err := h.uploads.List(c.Context(), c.QueryInt("limit", 0))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(transfer.UploadsResponse{
		Success: true,
		Images:  values(images),
	})
}

func (h *ImageHandler) RemoveUpload(c *fiber.Ctx) error {
	if err := h.uploads.Remove(c.Context(), c.Params("id")); err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(transfer.MessageResponse{
		Success: true,
		Message: "Image removed",
	})
}
