package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/postcraft/internal/apperr"
	"github.com/maheshrc27/postcraft/internal/service"
	"github.com/maheshrc27/postcraft/internal/transfer"
)

type ProxyHandler struct {
	s service.RelayService
}

func NewProxyHandler(service service.RelayService) *ProxyHandler {
	return &ProxyHandler{s: service}
}

func setProxyCORS(c *fiber.Ctx) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type")
}

// Preflight answers CORS preflight for any webhook id.
func (h *ProxyHandler) Preflight(c *fiber.Ctx) error {
	setProxyCORS(c)
	return c.SendStatus(fiber.StatusOK)
}

func (h *ProxyHandler) Forward(c *fiber.Ctx) error {
	setProxyCORS(c)

	resp, err := h.s.Forward(c.Context(), c.Params("webhookId"), c.Get(fiber.HeaderContentType), c.Body())
	if err != nil {
		status := fiber.StatusInternalServerError
		var validation *apperr.ValidationError
		if errors.As(err, &validation) {
			status = fiber.StatusBadRequest
		}
		return c.Status(status).JSON(transfer.MessageResponse{
			Success: false,
			Error:   err.Error(),
		})
	}

	c.Set(fiber.HeaderContentType, resp.ContentType)
	return c.Status(resp.Status).Send(resp.Body)
}
