package domain

import "time"

// Comment captures a message in a ticket thread. TicketID, AuthorID and
// CreatedAt are immutable after creation. IsInternal marks admin-only notes:
// a comment may carry the flag only when its author held the Admin role at
// creation time.
type Comment struct {
	ID         int64
	TicketID   int64
	AuthorID   int64
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}
