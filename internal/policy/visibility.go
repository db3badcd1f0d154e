package policy

import (
	"sort"

	"github.com/servicedesk-io/servicedesk/internal/domain"
)

// VisibleComments returns the comments the principal may see, ordered by
// creation time with id as tiebreak. Non-admins never observe internal notes,
// not even their count. Ticket-level read access is the caller's precondition.
func VisibleComments(p domain.Principal, comments []domain.Comment) []domain.Comment {
	visible := make([]domain.Comment, 0, len(comments))
	for _, c := range comments {
		if c.IsInternal && !p.IsAdmin() {
			continue
		}
		visible = append(visible, c)
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].CreatedAt.Equal(visible[j].CreatedAt) {
			return visible[i].ID < visible[j].ID
		}
		return visible[i].CreatedAt.Before(visible[j].CreatedAt)
	})
	return visible
}

// CanViewComment reports whether a single comment may be disclosed to the
// principal, assuming ticket access is already established.
func CanViewComment(p domain.Principal, comment *domain.Comment) bool {
	if comment == nil {
		return false
	}
	return p.IsAdmin() || !comment.IsInternal
}

// NormalizeOnCreate stamps authorship and strips the internal flag from
// non-admin authors regardless of the requested value.
func NormalizeOnCreate(p domain.Principal, comment *domain.Comment) {
	comment.AuthorID = p.UserID
	if !p.IsAdmin() {
		comment.IsInternal = false
	}
}

// NormalizeOnUpdate applies the requested edit to an existing comment.
// Content is always replaceable by the author; the internal flag only by an
// admin. Identity fields never change, whatever the request carried.
func NormalizeOnUpdate(p domain.Principal, existing *domain.Comment, content string, isInternal bool) {
	existing.Content = content
	if p.IsAdmin() {
		existing.IsInternal = isInternal
	}
}
