package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/servicedesk-io/servicedesk/internal/api/dto"
	"github.com/servicedesk-io/servicedesk/internal/auth"
	"github.com/servicedesk-io/servicedesk/internal/service"
	apperrors "github.com/servicedesk-io/servicedesk/pkg/util"
)

// CommentsHandler manages comment endpoints.
type CommentsHandler struct {
	comments *service.CommentService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(comments *service.CommentService) *CommentsHandler {
	return &CommentsHandler{comments: comments}
}

// Create POST /comments.
func (h *CommentsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.TicketID <= 0 {
		return apperrors.NewValidationError("ticket_id is required", nil)
	}

	comment, err := h.comments.Add(c.UserContext(), principal, req.TicketID, req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// Get GET /comments/:id.
func (h *CommentsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	comment, err := h.comments.Get(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment)})
}

// Update PUT /comments/:id.
func (h *CommentsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.UpdateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	comment, err := h.comments.Update(c.UserContext(), principal, id, req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": commentResponse(comment)})
}

// Delete DELETE /comments/:id.
func (h *CommentsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	if err := h.comments.Delete(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
