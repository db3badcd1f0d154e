package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew      TicketStatus = "New"
	TicketStatusOpen     TicketStatus = "Open"
	TicketStatusResolved TicketStatus = "Resolved"
	TicketStatusClosed   TicketStatus = "Closed"
)

// ParseTicketStatus validates a wire-level status literal.
func ParseTicketStatus(raw string) (TicketStatus, bool) {
	switch TicketStatus(raw) {
	case TicketStatusNew, TicketStatusOpen, TicketStatusResolved, TicketStatusClosed:
		return TicketStatus(raw), true
	default:
		return "", false
	}
}

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// ParseTicketPriority validates a priority literal.
func ParseTicketPriority(raw string) (TicketPriority, bool) {
	switch TicketPriority(raw) {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return TicketPriority(raw), true
	default:
		return "", false
	}
}

// Ticket is the aggregate for support requests.
//
// UpdatedAt is owned by the store: a database trigger stamps it on every
// mutation, so the value is authoritative only after a fresh read. Version is
// the optimistic concurrency token compared on every update.
type Ticket struct {
	ID          int64
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	OwnerID     int64
	CategoryID  int64
	Version     int64
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
