package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/servicedesk-io/servicedesk/internal/domain"
	"github.com/servicedesk-io/servicedesk/internal/events"
	"github.com/servicedesk-io/servicedesk/internal/policy"
	"github.com/servicedesk-io/servicedesk/internal/repository"
	"github.com/servicedesk-io/servicedesk/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	categories repository.CategoryRepository
	dispatcher events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo   repository.TicketRepository
	CommentRepo  repository.CommentRepository
	CategoryRepo repository.CategoryRepository
	Dispatcher   events.Dispatcher
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string
	Description string
	CategoryID  int64
	Priority    string
}

// TicketUpdateInput describes editable ticket fields. Status changes go
// through ChangeStatus exclusively.
type TicketUpdateInput struct {
	Title       string
	Description string
	CategoryID  int64
	Priority    string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		categories: deps.CategoryRepo,
		dispatcher: deps.Dispatcher,
	}
}

// Create files a new ticket. Ownership is always the caller and status is
// always New, whatever the payload claimed.
func (s *TicketService) Create(ctx context.Context, p domain.Principal, input TicketCreateInput) (*domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.CategoryID == 0 {
		return nil, util.NewValidationError("title, description and category_id are required", nil)
	}

	priority := domain.TicketPriorityMedium
	if input.Priority != "" {
		parsed, ok := domain.ParseTicketPriority(input.Priority)
		if !ok {
			return nil, util.NewValidationError("unrecognized priority", map[string]any{"priority": input.Priority})
		}
		priority = parsed
	}

	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewValidationError("unknown category", map[string]any{"category_id": input.CategoryID})
		}
		return nil, util.NewStoreUnavailable(err)
	}

	ticket := &domain.Ticket{
		Title:       title,
		Description: description,
		Status:      domain.TicketStatusNew,
		Priority:    priority,
		OwnerID:     p.UserID,
		CategoryID:  input.CategoryID,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, util.NewStoreUnavailable(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    actorFor(p),
		Payload: events.TicketCreatedPayload{
			Title:      ticket.Title,
			Priority:   ticket.Priority,
			CategoryID: ticket.CategoryID,
		},
	})
	return ticket, nil
}

// List returns every ticket for admins and only owned tickets otherwise.
func (s *TicketService) List(ctx context.Context, p domain.Principal) ([]domain.Ticket, error) {
	var (
		tickets []domain.Ticket
		err     error
	)
	if p.IsAdmin() {
		tickets, err = s.tickets.ListAll(ctx)
	} else {
		tickets, err = s.tickets.ListByOwner(ctx, p.UserID)
	}
	if err != nil {
		return nil, util.NewStoreUnavailable(err)
	}
	return tickets, nil
}

// Get fetches a single ticket with its visible comments. Existence is checked
// before permission so an unrelated caller receives Forbidden, not NotFound.
func (s *TicketService) Get(ctx context.Context, p domain.Principal, id int64) (*domain.Ticket, []domain.Comment, error) {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if !policy.CanAccessTicket(p, ticket) {
		return nil, nil, util.NewForbidden("not permitted to view this ticket")
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, util.NewStoreUnavailable(err)
	}
	return ticket, policy.VisibleComments(p, comments), nil
}

// UpdateFields edits title, description, category and priority for the owner
// or an admin. A concurrent write surfaces as Conflict; the caller re-fetches
// and decides whether to retry.
func (s *TicketService) UpdateFields(ctx context.Context, p domain.Principal, id int64, input TicketUpdateInput) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessTicket(p, ticket) {
		return nil, util.NewForbidden("not permitted to edit this ticket")
	}

	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" || input.CategoryID == 0 {
		return nil, util.NewValidationError("title, description and category_id are required", nil)
	}
	priority, ok := domain.ParseTicketPriority(input.Priority)
	if !ok {
		return nil, util.NewValidationError("unrecognized priority", map[string]any{"priority": input.Priority})
	}

	ticket.Title = title
	ticket.Description = description
	ticket.CategoryID = input.CategoryID
	ticket.Priority = priority

	if err := s.saveTicket(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketUpdated,
		TicketID: ticket.ID,
		Actor:    actorFor(p),
	})
	return ticket, nil
}

// ChangeStatus applies the lifecycle rules to a raw status literal. Admins
// cannot force-close a stuck ticket this way; deleting it is their only
// escape hatch.
func (s *TicketService) ChangeStatus(ctx context.Context, p domain.Principal, id int64, rawStatus string) (*domain.Ticket, error) {
	requested, ok := domain.ParseTicketStatus(rawStatus)
	if !ok {
		return nil, util.NewValidationError("unrecognized status", map[string]any{"status": rawStatus})
	}

	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanAccessTicket(p, ticket) {
		return nil, util.NewForbidden("not permitted to change this ticket")
	}

	oldStatus := ticket.Status
	if err := policy.ApplyStatusTransition(p, ticket, requested); err != nil {
		return nil, err
	}

	if err := s.saveTicket(ctx, ticket); err != nil {
		return nil, err
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    actorFor(p),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
		},
	})
	return ticket, nil
}

// Delete removes a ticket; admin only.
func (s *TicketService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	if !p.IsAdmin() {
		return util.NewForbidden("admin role required")
	}
	ticket, err := s.loadTicket(ctx, id)
	if err != nil {
		return err
	}

	deleted, err := s.tickets.Delete(ctx, id)
	if err != nil {
		return util.NewStoreUnavailable(err)
	}
	if !deleted {
		return util.NewNotFound("ticket", map[string]any{"id": id})
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketDeleted,
		TicketID: id,
		Actor:    actorFor(p),
		Payload:  events.TicketDeletedPayload{Title: ticket.Title},
	})
	return nil
}

func (s *TicketService) loadTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, util.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, util.NewStoreUnavailable(err)
	}
	return ticket, nil
}

// saveTicket persists a mutation and maps the version check outcome. On
// conflict the record is re-read so the error carries the current state, but
// the operation is never retried here.
func (s *TicketService) saveTicket(ctx context.Context, ticket *domain.Ticket) error {
	err := s.tickets.Update(ctx, ticket)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrVersionConflict) {
		details := map[string]any{"id": ticket.ID}
		if fresh, freshErr := s.tickets.GetByID(ctx, ticket.ID); freshErr == nil {
			details["current_status"] = fresh.Status
			details["current_version"] = fresh.Version
		}
		return util.NewConflict("ticket was modified concurrently", details)
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return util.NewNotFound("ticket", map[string]any{"id": ticket.ID})
	}
	return util.NewStoreUnavailable(err)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorFor(p domain.Principal) events.Actor {
	return events.Actor{UserID: p.UserID, Role: p.Role}
}
