// Package policy holds the authorization and lifecycle rules for tickets and
// comments. Everything here is a pure function over domain values; callers
// establish existence first and map the returned errors to responses.
package policy

import (
	"github.com/servicedesk-io/servicedesk/internal/domain"
)

// CanAccessTicket reports whether the principal may read or act on a ticket.
// Admins see every ticket; everyone else only their own.
func CanAccessTicket(p domain.Principal, ticket *domain.Ticket) bool {
	if ticket == nil {
		return false
	}
	if p.IsAdmin() {
		return true
	}
	return p.UserID == ticket.OwnerID
}

// CanMutateOwnedEntity reports whether the principal may edit or delete an
// entity owned by ownerID. Role never overrides this: an admin edits and
// deletes only their own comments.
func CanMutateOwnedEntity(p domain.Principal, ownerID int64) bool {
	return p.UserID == ownerID
}
