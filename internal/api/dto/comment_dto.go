package dto

import "time"

// CreateCommentRequest payload. is_internal is honored only for admins.
type CreateCommentRequest struct {
	TicketID   int64  `json:"ticket_id"`
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// UpdateCommentRequest payload. Identity fields in the body are ignored.
type UpdateCommentRequest struct {
	Content    string `json:"content"`
	IsInternal bool   `json:"is_internal"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID         int64     `json:"id"`
	TicketID   int64     `json:"ticket_id"`
	AuthorID   int64     `json:"author_id"`
	Content    string    `json:"content"`
	IsInternal bool      `json:"is_internal"`
	CreatedAt  time.Time `json:"created_at"`
}
