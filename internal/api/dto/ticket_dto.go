package dto

import (
	"time"

	"github.com/servicedesk-io/servicedesk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  int64  `json:"category_id"`
	Priority    string `json:"priority"`
}

// UpdateTicketRequest payload. Status is deliberately absent; status changes
// go through the dedicated status endpoint.
type UpdateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CategoryID  int64  `json:"category_id"`
	Priority    string `json:"priority"`
}

// TicketSummary response.
type TicketSummary struct {
	ID         int64                 `json:"id"`
	Title      string                `json:"title"`
	Status     domain.TicketStatus   `json:"status"`
	Priority   domain.TicketPriority `json:"priority"`
	OwnerID    int64                 `json:"owner_id"`
	CategoryID int64                 `json:"category_id"`
	CreatedAt  time.Time             `json:"created_at"`
	UpdatedAt  *time.Time            `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID          int64                 `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Status      domain.TicketStatus   `json:"status"`
	Priority    domain.TicketPriority `json:"priority"`
	OwnerID     int64                 `json:"owner_id"`
	CategoryID  int64                 `json:"category_id"`
	Version     int64                 `json:"version"`
	CreatedAt   time.Time             `json:"created_at"`
	UpdatedAt   *time.Time            `json:"updated_at"`
	Comments    []CommentResponse     `json:"comments"`
}

// CategoryResponse lookup entry.
type CategoryResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
