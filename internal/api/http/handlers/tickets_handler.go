package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/servicedesk-io/servicedesk/internal/api/dto"
	"github.com/servicedesk-io/servicedesk/internal/auth"
	"github.com/servicedesk-io/servicedesk/internal/domain"
	"github.com/servicedesk-io/servicedesk/internal/service"
	apperrors "github.com/servicedesk-io/servicedesk/pkg/util"
)

// TicketsHandler manages ticket endpoints.
type TicketsHandler struct {
	tickets  *service.TicketService
	comments *service.CommentService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(tickets *service.TicketService, comments *service.CommentService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, comments: comments}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.Create(c.UserContext(), principal, service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	tickets, err := h.tickets.List(c.UserContext(), principal)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// Get GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	ticket, comments, err := h.tickets.Get(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, comments)})
}

// Update PUT /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.UpdateFields(c.UserContext(), principal, id, service.TicketUpdateInput{
		Title:       req.Title,
		Description: req.Description,
		CategoryID:  req.CategoryID,
		Priority:    req.Priority,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ChangeStatus PATCH /tickets/:id/status. The body is a bare JSON string,
// e.g. "Open"; anything else is rejected before the lifecycle rules run.
func (h *TicketsHandler) ChangeStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}

	var requested string
	if err := json.Unmarshal(c.Body(), &requested); err != nil {
		return apperrors.NewValidationError("status must be a JSON string", nil)
	}

	ticket, err := h.tickets.ChangeStatus(c.UserContext(), principal, id, requested)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Delete DELETE /tickets/:id. Admin only, enforced again in the service.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	if err := h.tickets.Delete(c.UserContext(), principal, id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListComments GET /tickets/:id/comments.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	id, err := parseID(c.Params("id"))
	if err != nil {
		return err
	}
	comments, err := h.comments.ListForTicket(c.UserContext(), principal, id)
	if err != nil {
		return err
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", map[string]any{"id": raw})
	}
	return id, nil
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:         ticket.ID,
		Title:      ticket.Title,
		Status:     ticket.Status,
		Priority:   ticket.Priority,
		OwnerID:    ticket.OwnerID,
		CategoryID: ticket.CategoryID,
		CreatedAt:  ticket.CreatedAt,
		UpdatedAt:  ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, comments []domain.Comment) dto.TicketDetailResponse {
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return dto.TicketDetailResponse{
		ID:          ticket.ID,
		Title:       ticket.Title,
		Description: ticket.Description,
		Status:      ticket.Status,
		Priority:    ticket.Priority,
		OwnerID:     ticket.OwnerID,
		CategoryID:  ticket.CategoryID,
		Version:     ticket.Version,
		CreatedAt:   ticket.CreatedAt,
		UpdatedAt:   ticket.UpdatedAt,
		Comments:    items,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		AuthorID:   comment.AuthorID,
		Content:    comment.Content,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}
