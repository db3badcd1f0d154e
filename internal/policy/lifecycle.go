package policy

import (
	"github.com/servicedesk-io/servicedesk/internal/domain"
	"github.com/servicedesk-io/servicedesk/pkg/util"
)

// Statuses each side of the conversation may request. Admins work the ticket
// but may never confirm closure; the owner only confirms (Closed) or rejects
// (Open) a resolution. Adding a state means extending these two sets.
var (
	adminRequestable = map[domain.TicketStatus]bool{
		domain.TicketStatusNew:      true,
		domain.TicketStatusOpen:     true,
		domain.TicketStatusResolved: true,
	}
	ownerRequestable = map[domain.TicketStatus]bool{
		domain.TicketStatusOpen:   true,
		domain.TicketStatusClosed: true,
	}
)

// ApplyStatusTransition validates the requested transition for the principal
// and, when permitted, sets ticket.Status. Persistence is the caller's job.
// The caller has already confirmed the ticket exists.
func ApplyStatusTransition(p domain.Principal, ticket *domain.Ticket, requested domain.TicketStatus) error {
	if ticket.Status == domain.TicketStatusClosed {
		return util.NewInvalidTransition("ticket is closed and its status can no longer change", map[string]any{
			"status": ticket.Status,
		})
	}
	if requested == ticket.Status {
		return util.NewInvalidTransition("ticket already has the requested status", map[string]any{
			"status": ticket.Status,
		})
	}

	switch {
	case p.IsAdmin():
		if requested == domain.TicketStatusClosed {
			return util.NewForbidden("only the ticket owner may confirm closure")
		}
		if !adminRequestable[requested] {
			return util.NewInvalidTransition("status not permitted for admin", map[string]any{
				"requested": requested,
			})
		}
	case p.UserID == ticket.OwnerID:
		if !ownerRequestable[requested] {
			return util.NewInvalidTransition("owner may only confirm (Closed) or reopen (Open)", map[string]any{
				"requested": requested,
			})
		}
	default:
		return util.NewForbidden("not permitted to change this ticket")
	}

	ticket.Status = requested
	return nil
}
