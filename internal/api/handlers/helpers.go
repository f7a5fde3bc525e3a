package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/transfer"
)

// ErrorStatus maps a service error to its HTTP status.
func ErrorStatus(err error) int {
	var (
		validation *apperr.ValidationError
		fiberErr   *fiber.Error
	)
	switch {
	case errors.As(err, &validation):
		if validation.TooLarge {
			return fiber.StatusRequestEntityTooLarge
		}
		return fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		return fiber.StatusNotFound
	case apperr.IsUpstream(err):
		return fiber.StatusBadGateway
	case errors.As(err, &fiberErr):
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

func errorResponse(c *fiber.Ctx, err error) error {
	status := ErrorStatus(err)
	if status >= fiber.StatusInternalServerError {
		slog.Error("request failed", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	} else {
		slog.Info("request rejected", "method", c.Method(), "path", c.Path(), "status", status, "error", err)
	}

	return c.Status(status).JSON(transfer.MessageResponse{
		Success: false,
		Error:   err.Error(),
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(transfer.MessageResponse{
		Success: false,
		Error:   message,
	})
}

func values[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		out = append(out, *item)
	}
	return out
}

func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
