package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postcraft/internal/service"
	"github.com/maheshrc27/postcraft/internal/transfer"
)

type IdeaHandler struct {
	s service.IdeaService
}

func NewIdeaHandler(service service.IdeaService) *IdeaHandler {
	return &IdeaHandler{s: service}
}

func (h *IdeaHandler) GenerateIdeas(c *fiber.Ctx) error {
	var req transfer.GenerateIdeasRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	ideas, err := h.s.Generate(c.Context(), &req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(transfer.IdeasResponse{
		Success: true,
		Ideas:   values(ideas),
	})
}

func (h *IdeaHandler) ListIdeas(c *fiber.Ctx) error {
	ideas, err := h.s.List(c.Context(), c.QueryInt("limit", 0))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(transfer.IdeasResponse{
		Success: true,
		Ideas:   values(ideas),
	})
}

func (h *IdeaHandler) UpdateIdea(c *fiber.Ctx) error {
	var req transfer.UpdateIdeaRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "Unable to parse json")
	}

	idea, err := h.s.Update(c.Context(), c.Params("id"), &req)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(transfer.IdeaResponse{
		Success: true,
		Idea:    *idea,
	})
}
