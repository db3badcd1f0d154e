package events

import (
	"time"

	"github.com/servicedesk-io/servicedesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketUpdated       EventType = "ticket_updated"
	EventTicketDeleted       EventType = "ticket_deleted"
	EventCommentAdded        EventType = "comment_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title      string                `json:"title"`
	Priority   domain.TicketPriority `json:"priority"`
	CategoryID int64                 `json:"category_id"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketDeletedPayload payload.
type TicketDeletedPayload struct {
	Title string `json:"title"`
}

// CommentAddedPayload payload.
type CommentAddedPayload struct {
	CommentID  int64 `json:"comment_id"`
	AuthorID   int64 `json:"author_id"`
	IsInternal bool  `json:"is_internal"`
}
