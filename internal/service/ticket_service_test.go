package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/servicedesk-io/servicedesk/internal/domain"
	"github.com/servicedesk-io/servicedesk/internal/events"
	"github.com/servicedesk-io/servicedesk/pkg/util"
)

type ticketFixture struct {
	service    *TicketService
	tickets    *fakeTicketRepo
	comments   *fakeCommentRepo
	dispatcher *recordingDispatcher
}

func newTicketFixture() *ticketFixture {
	tickets := newFakeTicketRepo()
	comments := newFakeCommentRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo:   tickets,
		CommentRepo:  comments,
		CategoryRepo: newFakeCategoryRepo("Hardware", "Software"),
		Dispatcher:   dispatcher,
	})
	return &ticketFixture{service: svc, tickets: tickets, comments: comments, dispatcher: dispatcher}
}

var (
	ownerPrincipal    = domain.Principal{UserID: 3, Role: domain.RoleUser}
	adminPrincipal    = domain.Principal{UserID: 99, Role: domain.RoleAdmin}
	strangerPrincipal = domain.Principal{UserID: 8, Role: domain.RoleUser}
)

func TestCreateForcesOwnerAndNewStatus(t *testing.T) {
	f := newTicketFixture()

	ticket, err := f.service.Create(context.Background(), ownerPrincipal, TicketCreateInput{
		Title:       "printer jam",
		Description: "tray 2 keeps jamming",
		CategoryID:  1,
		Priority:    "High",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.TicketStatusNew, ticket.Status)
	assert.Equal(t, ownerPrincipal.UserID, ticket.OwnerID)
	assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
	assert.Equal(t, int64(1), ticket.Version)
	assert.Nil(t, ticket.UpdatedAt)

	event, ok := f.dispatcher.lastOfType(events.EventTicketCreated)
	require.True(t, ok)
	assert.Equal(t, ticket.ID, event.TicketID)
	assert.Equal(t, ownerPrincipal.UserID, event.Actor.UserID)
}

func TestCreateValidation(t *testing.T) {
	f := newTicketFixture()
	ctx := context.Background()

	_, err := f.service.Create(ctx, ownerPrincipal, TicketCreateInput{Title: "  ", Description: "x", CategoryID: 1})
	assert.True(t, util.HasCode(err, util.CodeValidation))

	_, err = f.service.Create(ctx, ownerPrincipal, TicketCreateInput{Title: "x", Description: "y", CategoryID: 404})
	assert.True(t, util.HasCode(err, util.CodeValidation))

	_, err = f.service.Create(ctx, ownerPrincipal, TicketCreateInput{Title: "x", Description: "y", CategoryID: 1, Priority: "urgent"})
	assert.True(t, util.HasCode(err, util.CodeValidation))
}

func TestCreateDefaultsPriorityToMedium(t *testing.T) {
	f := newTicketFixture()

	ticket, err := f.service.Create(context.Background(), ownerPrincipal, TicketCreateInput{
		Title:       "vpn drops",
		Description: "drops every hour",
		CategoryID:  2,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
}

func TestListScopesByRole(t *testing.T) {
	f := newTicketFixture()
	f.tickets.put(domain.Ticket{ID: 1, OwnerID: 3, Status: domain.TicketStatusNew})
	f.tickets.put(domain.Ticket{ID: 2, OwnerID: 8, Status: domain.TicketStatusOpen})

	mine, err := f.service.List(context.Background(), ownerPrincipal)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, int64(1), mine[0].ID)

	all, err := f.service.List(context.Background(), adminPrincipal)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestGetChecksExistenceBeforePermission(t *testing.T) {
	f := newTicketFixture()
	f.tickets.put(domain.Ticket{ID: 1, OwnerID: 3, Status: domain.TicketStatusOpen})

	_, _, err := f.service.Get(context.Background(), strangerPrincipal, 404)
	assert.True(t, util.HasCode(err, util.CodeNotFound))

	_, _, err = f.service.Get(context.Background(), strangerPrincipal, 1)
	assert.True(t, util.HasCode(err, util.CodeForbidden))
}

func TestGetFiltersInternalComments(t *testing.T) {
	f := newTicketFixture()
	f.tickets.put(domain.Ticket{ID: 7, OwnerID: 3, Status: domain.TicketStatusOpen})

	base := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	f.comments.put(domain.Comment{ID: 1, TicketID: 7, AuthorID: 3, Content: "broken", CreatedAt: base})
	f.comments.put(domain.Comment{ID: 2, TicketID: 7, AuthorID: 99, Content: "warranty void", IsInternal: true, CreatedAt: base.Add(time.Minute)})
	f.comments.put(domain.Comment{ID: 3, TicketID: 7, AuthorID: 99, Content: "on it", CreatedAt: base.Add(2 * time.Minute)})

	_, visible, err := f.service.Get(context.Background(), ownerPrincipal, 7)
	require.NoError(t, err)
	require.Len(t, visible, 2)
	assert.Equal(t, int64(1), visible[0].ID)
	assert.Equal(t, int64(3), visible[1].ID)

	_, visible, err = f.service.Get(context.Background(), adminPrincipal, 7)
	require.NoError(t, err)
	assert.Len(t, visible, 3)
}

func TestUpdateFieldsBumpsVersionAndStampsUpdatedAt(t *testing.T) {
	f := newTicketFixture()
	f.tickets.put(domain.Ticket{
		ID: 1, OwnerID: 3, Status: domain.TicketStatusOpen,
		Title: "old", Description: "old", CategoryID: 1,
		Priority: domain.TicketPriorityLow, Version: 1,
	})

	ticket, err := f.service.UpdateFields(context.Background(), ownerPrincipal, 1, TicketUpdateInput{
		Title:       "new title",
		Description: "new description",
		CategoryID:  2,
		Priority:    "High",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), ticket.Version)
	require.NotNil(t, ticket.UpdatedAt)
	assert.Equal(t, "new title", ticket.Title)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
}

func TestUpdateFieldsForbiddenForStrangers(t *testing.T) {
	f := newTicketFixture()
	f.tickets.put(domain.Ticket{ID: 1, OwnerID: 3, Status: domain.TicketStatusOpen, Version: 1})

	_, err := f.service.UpdateFields(context.Background(), strangerPrincipal, 1, TicketUpdateInput{
		Title: "x", Description: "y", CategoryID: 1, Priority: "Low",
	})
	assert.True(t, util.HasCode(err, util.CodeForbidden))
}

func TestConcurrentUpdateSurfacesConflict(t *testing.T) {
	f := newTicketFixture()
	f.tickets.put(domain.Ticket{
		ID: 1, OwnerID: 3, Status: domain.TicketStatusResolved,
		Title: "t", Description: "d", CategoryID: 1,
		Priority: domain.TicketPriorityMedium, Version: 1,
	})

	// Another writer advances the version after our snapshot was taken.
	stale := f.tickets.tickets[1]
	current := stale
	current.Version = 2
	current.Status = domain.TicketStatusOpen
	f.tickets.tickets[1] = current

	err := f.service.saveTicket(context.Background(), &stale)
	require.True(t, util.HasCode(err, util.CodeConflict))

	var domainErr *util.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, domain.TicketStatusOpen, domainErr.Details["current_status"])
	assert.Equal(t, int64(2), domainErr.Details["current_version"])

	// The stale snapshot was not silently retried over the newer write.
	assert.Equal(t, domain.TicketStatusOpen, f.tickets.tickets[1].Status)
	assert.Equal(t, int64(2), f.tickets.tickets[1].Version)
}

func TestChangeStatusHappyPath(t *testing.T) {
	f := newTicketFixture()
	f.tickets.put(domain.Ticket{ID: 1, OwnerID: 3, Status: domain.TicketStatusResolved, CategoryID: 1, Version: 3})

	ticket, err := f.service.ChangeStatus(context.Background(), ownerPrincipal, 1, "Closed")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, ticket.Status)
	assert.Equal(t, int64(4), ticket.Version)

	event, ok := f.dispatcher.lastOfType(events.EventTicketStatusChanged)
	require.True(t, ok)
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.TicketStatusResolved, payload.OldStatus)
	assert.Equal(t, domain.TicketStatusClosed, payload.NewStatus)
}

func TestChangeStatusRejectsUnknownLiteral(t *testing.T) {
	f := newTicketFixture()
	f.tickets.put(domain.Ticket{ID: 1, OwnerID: 3, Status: domain.TicketStatusOpen, Version: 1})

	_, err := f.service.ChangeStatus(context.Background(), ownerPrincipal, 1, "Reopened")
	assert.True(t, util.HasCode(err, util.CodeValidation))
}

func TestChangeStatusAdminCannotClose(t *testing.T) {
	f := newTicketFixture()
	f.tickets.put(domain.Ticket{ID: 1, OwnerID: 3, Status: domain.TicketStatusResolved, Version: 1})

	_, err := f.service.ChangeStatus(context.Background(), adminPrincipal, 1, "Closed")
	assert.True(t, util.HasCode(err, util.CodeForbidden))
	assert.Equal(t, domain.TicketStatusResolved, f.tickets.tickets[1].Status)
}

func TestChangeStatusClosedStaysClosed(t *testing.T) {
	f := newTicketFixture()
	f.tickets.put(domain.Ticket{ID: 1, OwnerID: 3, Status: domain.TicketStatusClosed, Version: 1})

	_, err := f.service.ChangeStatus(context.Background(), ownerPrincipal, 1, "Open")
	assert.True(t, util.HasCode(err, util.CodeInvalidTransition))

	_, err = f.service.ChangeStatus(context.Background(), adminPrincipal, 1, "Open")
	assert.True(t, util.HasCode(err, util.CodeInvalidTransition))
}

func TestDeleteIsAdminOnly(t *testing.T) {
	f := newTicketFixture()
	f.tickets.put(domain.Ticket{ID: 1, OwnerID: 3, Status: domain.TicketStatusNew, Version: 1})

	err := f.service.Delete(context.Background(), ownerPrincipal, 1)
	assert.True(t, util.HasCode(err, util.CodeForbidden))

	require.NoError(t, f.service.Delete(context.Background(), adminPrincipal, 1))
	assert.Empty(t, f.tickets.tickets)

	err = f.service.Delete(context.Background(), adminPrincipal, 1)
	assert.True(t, util.HasCode(err, util.CodeNotFound))
}

func TestStoreFailureMapsToStoreUnavailable(t *testing.T) {
	f := newTicketFixture()
	f.tickets.failWith = errors.New("connection refused")

	_, err := f.service.List(context.Background(), adminPrincipal)
	assert.True(t, util.HasCode(err, util.CodeStoreUnavailable))

	_, _, err = f.service.Get(context.Background(), adminPrincipal, 1)
	assert.True(t, util.HasCode(err, util.CodeStoreUnavailable))
}
