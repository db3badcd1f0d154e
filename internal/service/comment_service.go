package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/servicedesk-io/servicedesk/internal/domain"
	"github.com/servicedesk-io/servicedesk/internal/events"
	"github.com/servicedesk-io/servicedesk/internal/policy"
	"github.com/servicedesk-io/servicedesk/internal/repository"
	"github.com/servicedesk-io/servicedesk/pkg/util"
)

// CommentService coordinates the ticket comment thread.
type CommentService struct {
	comments   repository.CommentRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// NewCommentService constructs the service.
func NewCommentService(comments repository.CommentRepository, tickets repository.TicketRepository, dispatcher events.Dispatcher) *CommentService {
	return &CommentService{comments: comments, tickets: tickets, dispatcher: dispatcher}
}

// ListForTicket returns the comments visible to the caller, oldest first.
func (s *CommentService) ListForTicket(ctx context.Context, p domain.Principal, ticketID int64) ([]domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessTicket(p, ticket) {
		return nil, util.NewForbidden("not permitted to view this ticket")
	}

	comments, err := s.comments.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	return policy.VisibleComments(p, comments), nil
}

// Add appends a comment to a ticket the caller may access. The internal flag
// survives only for admin authors.
func (s *CommentService) Add(ctx context.Context, p domain.Principal, ticketID int64, content string, isInternal bool) (*domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessTicket(p, ticket) {
		return nil, util.NewForbidden("not permitted to comment on this ticket")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, util.NewValidationError("content is required", nil)
	}

	comment := &domain.Comment{
		TicketID:   ticket.ID,
		Content:    content,
		IsInternal: isInternal,
	}
	policy.NormalizeOnCreate(p, comment)

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, util.NewStoreUnavailable(err)
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			Type:     events.EventCommentAdded,
			TicketID: ticket.ID,
			Actor:    actorFor(p),
			Payload: events.CommentAddedPayload{
				CommentID:  comment.ID,
				AuthorID:   comment.AuthorID,
				IsInternal: comment.IsInternal,
			},
		})
	}
	return comment, nil
}

// Get fetches a single comment. An internal note is indistinguishable from a
// missing one for non-admin callers.
func (s *CommentService) Get(ctx context.Context, p domain.Principal, id int64) (*domain.Comment, error) {
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return nil, err
	}
	ticket, err := s.loadTicket(ctx, comment.TicketID)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessTicket(p, ticket) {
		return nil, util.NewForbidden("not permitted to view this ticket")
	}
	if !policy.CanViewComment(p, comment) {
		return nil, util.NewNotFound("comment", map[string]any{"id": id})
	}
	return comment, nil
}

// Update edits a comment's content and, for admin authors, its internal flag.
// Only the author may edit; role grants no extra authority here.
func (s *CommentService) Update(ctx context.Context, p domain.Principal, id int64, content string, isInternal bool) (*domain.Comment, error) {
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewComment(p, comment) {
		return nil, util.NewNotFound("comment", map[string]any{"id": id})
	}
	if !policy.CanMutateOwnedEntity(p, comment.AuthorID) {
		return nil, util.NewForbidden("only the author may edit a comment")
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return nil, util.NewValidationError("content is required", nil)
	}

	policy.NormalizeOnUpdate(p, comment, content, isInternal)
	if err := s.comments.Update(ctx, comment); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("comment", map[string]any{"id": id})
		}
		return nil, util.NewStoreUnavailable(err)
	}
	return comment, nil
}

// Delete removes a comment; author only.
func (s *CommentService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	comment, err := s.loadComment(ctx, id)
	if err != nil {
		return err
	}
	if !policy.CanViewComment(p, comment) {
		return util.NewNotFound("comment", map[string]any{"id": id})
	}
	if !policy.CanMutateOwnedEntity(p, comment.AuthorID) {
		return util.NewForbidden("only the author may delete a comment")
	}

	deleted, err := s.comments.Delete(ctx, id)
	if err != nil {
		return util.NewStoreUnavailable(err)
	}
	if !deleted {
		return util.NewNotFound("comment", map[string]any{"id": id})
	}
	return nil
}

func (s *CommentService) loadTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, util.NewStoreUnavailable(err)
	}
	return ticket, nil
}

func (s *CommentService) loadComment(ctx context.Context, id int64) (*domain.Comment, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("comment", map[string]any{"id": id})
		}
		return nil, util.NewStoreUnavailable(err)
	}
	return comment, nil
}
