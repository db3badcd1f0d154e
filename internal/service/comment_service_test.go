package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicedesk-io/servicedesk/internal/domain"
	"github.com/servicedesk-io/servicedesk/internal/events"
	"github.com/servicedesk-io/servicedesk/pkg/util"
)

type commentFixture struct {
	service    *CommentService
	tickets    *fakeTicketRepo
	comments   *fakeCommentRepo
	dispatcher *recordingDispatcher
}

func newCommentFixture() *commentFixture {
	tickets := newFakeTicketRepo()
	comments := newFakeCommentRepo()
	dispatcher := &recordingDispatcher{}
	return &commentFixture{
		service:    NewCommentService(comments, tickets, dispatcher),
		tickets:    tickets,
		comments:   comments,
		dispatcher: dispatcher,
	}
}

func TestAddCommentStampsAuthorAndStripsInternal(t *testing.T) {
	f := newCommentFixture()
	f.tickets.put(domain.Ticket{ID: 7, OwnerID: 3, Status: domain.TicketStatusOpen})

	comment, err := f.service.Add(context.Background(), ownerPrincipal, 7, "  still broken  ", true)
	require.NoError(t, err)

	assert.Equal(t, ownerPrincipal.UserID, comment.AuthorID)
	assert.Equal(t, "still broken", comment.Content)
	assert.False(t, comment.IsInternal, "non-admin authors cannot create internal notes")

	event, ok := f.dispatcher.lastOfType(events.EventCommentAdded)
	require.True(t, ok)
	payload, ok := event.Payload.(events.CommentAddedPayload)
	require.True(t, ok)
	assert.Equal(t, comment.ID, payload.CommentID)
	assert.False(t, payload.IsInternal)
}

func TestAddCommentAdminKeepsInternalFlag(t *testing.T) {
	f := newCommentFixture()
	f.tickets.put(domain.Ticket{ID: 7, OwnerID: 3, Status: domain.TicketStatusOpen})

	comment, err := f.service.Add(context.Background(), adminPrincipal, 7, "warranty expired", true)
	require.NoError(t, err)
	assert.True(t, comment.IsInternal)
	assert.Equal(t, adminPrincipal.UserID, comment.AuthorID)
}

func TestAddCommentGuards(t *testing.T) {
	f := newCommentFixture()
	f.tickets.put(domain.Ticket{ID: 7, OwnerID: 3, Status: domain.TicketStatusOpen})

	_, err := f.service.Add(context.Background(), ownerPrincipal, 404, "hi", false)
	assert.True(t, util.HasCode(err, util.CodeNotFound))

	_, err = f.service.Add(context.Background(), strangerPrincipal, 7, "hi", false)
	assert.True(t, util.HasCode(err, util.CodeForbidden))

	_, err = f.service.Add(context.Background(), ownerPrincipal, 7, "   ", false)
	assert.True(t, util.HasCode(err, util.CodeValidation))
}

func TestListForTicketHidesInternalNotes(t *testing.T) {
	f := newCommentFixture()
	f.tickets.put(domain.Ticket{ID: 7, OwnerID: 3, Status: domain.TicketStatusOpen})

	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	f.comments.put(domain.Comment{ID: 1, TicketID: 7, AuthorID: 3, Content: "a", CreatedAt: base})
	f.comments.put(domain.Comment{ID: 2, TicketID: 7, AuthorID: 99, Content: "b", IsInternal: true, CreatedAt: base.Add(time.Minute)})
	f.comments.put(domain.Comment{ID: 3, TicketID: 7, AuthorID: 99, Content: "c", IsInternal: true, CreatedAt: base.Add(2 * time.Minute)})
	f.comments.put(domain.Comment{ID: 4, TicketID: 7, AuthorID: 99, Content: "d", CreatedAt: base.Add(3 * time.Minute)})
	f.comments.put(domain.Comment{ID: 5, TicketID: 7, AuthorID: 3, Content: "e", CreatedAt: base.Add(4 * time.Minute)})

	visible, err := f.service.ListForTicket(context.Background(), ownerPrincipal, 7)
	require.NoError(t, err)
	require.Len(t, visible, 3)
	assert.Equal(t, []int64{1, 4, 5}, []int64{visible[0].ID, visible[1].ID, visible[2].ID})

	all, err := f.service.ListForTicket(context.Background(), adminPrincipal, 7)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	_, err = f.service.ListForTicket(context.Background(), strangerPrincipal, 7)
	assert.True(t, util.HasCode(err, util.CodeForbidden))
}

func TestGetInternalCommentLooksMissingToNonAdmins(t *testing.T) {
	f := newCommentFixture()
	f.tickets.put(domain.Ticket{ID: 7, OwnerID: 3, Status: domain.TicketStatusOpen})
	f.comments.put(domain.Comment{ID: 2, TicketID: 7, AuthorID: 99, Content: "internal", IsInternal: true})

	// The owner may read the ticket yet must not learn the note exists.
	_, err := f.service.Get(context.Background(), ownerPrincipal, 2)
	assert.True(t, util.HasCode(err, util.CodeNotFound))

	comment, err := f.service.Get(context.Background(), adminPrincipal, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), comment.ID)
}

func TestUpdateCommentAuthorOnly(t *testing.T) {
	f := newCommentFixture()
	f.tickets.put(domain.Ticket{ID: 7, OwnerID: 3, Status: domain.TicketStatusOpen})
	f.comments.put(domain.Comment{ID: 1, TicketID: 7, AuthorID: 3, Content: "typo"})

	updated, err := f.service.Update(context.Background(), ownerPrincipal, 1, "fixed", false)
	require.NoError(t, err)
	assert.Equal(t, "fixed", updated.Content)

	// Admin role does not override authorship.
	_, err = f.service.Update(context.Background(), adminPrincipal, 1, "admin edit", false)
	assert.True(t, util.HasCode(err, util.CodeForbidden))

	_, err = f.service.Update(context.Background(), strangerPrincipal, 1, "drive-by", false)
	assert.True(t, util.HasCode(err, util.CodeForbidden))
}

func TestUpdateCommentInternalFlagAdminOnly(t *testing.T) {
	f := newCommentFixture()
	f.tickets.put(domain.Ticket{ID: 7, OwnerID: 3, Status: domain.TicketStatusOpen})
	f.comments.put(domain.Comment{ID: 1, TicketID: 7, AuthorID: 3, Content: "public"})
	f.comments.put(domain.Comment{ID: 2, TicketID: 7, AuthorID: 99, Content: "note", IsInternal: false})

	updated, err := f.service.Update(context.Background(), ownerPrincipal, 1, "edited", true)
	require.NoError(t, err)
	assert.False(t, updated.IsInternal)

	updated, err = f.service.Update(context.Background(), adminPrincipal, 2, "now internal", true)
	require.NoError(t, err)
	assert.True(t, updated.IsInternal)
}

func TestDeleteCommentAuthorOnly(t *testing.T) {
	f := newCommentFixture()
	f.tickets.put(domain.Ticket{ID: 7, OwnerID: 3, Status: domain.TicketStatusOpen})
	f.comments.put(domain.Comment{ID: 1, TicketID: 7, AuthorID: 3, Content: "mine"})

	err := f.service.Delete(context.Background(), adminPrincipal, 1)
	assert.True(t, util.HasCode(err, util.CodeForbidden))

	require.NoError(t, f.service.Delete(context.Background(), ownerPrincipal, 1))

	err = f.service.Delete(context.Background(), ownerPrincipal, 1)
	assert.True(t, util.HasCode(err, util.CodeNotFound))
}

func TestMutatingInternalCommentHidesExistenceFirst(t *testing.T) {
	f := newCommentFixture()
	f.tickets.put(domain.Ticket{ID: 7, OwnerID: 3, Status: domain.TicketStatusOpen})
	f.comments.put(domain.Comment{ID: 2, TicketID: 7, AuthorID: 99, Content: "internal", IsInternal: true})

	// Visibility wins over ownership: NotFound, never Forbidden.
	_, err := f.service.Update(context.Background(), ownerPrincipal, 2, "peek", false)
	assert.True(t, util.HasCode(err, util.CodeNotFound))

	err = f.service.Delete(context.Background(), ownerPrincipal, 2)
	assert.True(t, util.HasCode(err, util.CodeNotFound))
}
