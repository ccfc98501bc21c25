package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ticketdesk/cookie-auth/internal/api/dto"
)

// ContentHandler serves fixed payloads used to exercise role checks.
type ContentHandler struct{}

// NewContentHandler returns a new handler instance.
func NewContentHandler() *ContentHandler {
	return &ContentHandler{}
}

// Public handles GET /api/test/all.
func (h *ContentHandler) Public(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "public content"})
}

// User handles GET /api/test/user.
func (h *ContentHandler) User(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "user content"})
}

// Moderator handles GET /api/test/mod.
func (h *ContentHandler) Moderator(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "moderator board"})
}

// Admin handles GET /api/test/admin.
func (h *ContentHandler) Admin(c *fiber.Ctx) error {
	return c.JSON(dto.MessageResponse{Message: "admin board"})
}
