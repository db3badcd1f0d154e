package service

import (
	"context"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/servicedesk-io/servicedesk/internal/domain"
	"github.com/servicedesk-io/servicedesk/internal/events"
	"github.com/servicedesk-io/servicedesk/internal/repository"
)

// In-memory repositories backing the service tests. They mirror the store
// contract: pgx.ErrNoRows for absent rows, version checks on ticket updates,
// updated_at stamped by the store on every successful write.

type fakeTicketRepo struct {
	tickets map[int64]domain.Ticket
	nextID  int64

	failWith error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: make(map[int64]domain.Ticket), nextID: 1}
}

func (r *fakeTicketRepo) put(ticket domain.Ticket) {
	if ticket.Version == 0 {
		ticket.Version = 1
	}
	if ticket.CreatedAt.IsZero() {
		ticket.CreatedAt = time.Now()
	}
	r.tickets[ticket.ID] = ticket
	if ticket.ID >= r.nextID {
		r.nextID = ticket.ID + 1
	}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if r.failWith != nil {
		return r.failWith
	}
	ticket.ID = r.nextID
	r.nextID++
	ticket.Version = 1
	ticket.CreatedAt = time.Now()
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if r.failWith != nil {
		return r.failWith
	}
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Version != ticket.Version {
		return repository.ErrVersionConflict
	}
	ticket.Version++
	now := time.Now()
	ticket.UpdatedAt = &now
	r.tickets[ticket.ID] = *ticket
	return nil
}

func (r *fakeTicketRepo) Delete(_ context.Context, id int64) (bool, error) {
	if r.failWith != nil {
		return false, r.failWith
	}
	if _, ok := r.tickets[id]; !ok {
		return false, nil
	}
	delete(r.tickets, id)
	return true, nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	stored, ok := r.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	ticket := stored
	return &ticket, nil
}

func (r *fakeTicketRepo) ListAll(_ context.Context) ([]domain.Ticket, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var result []domain.Ticket
	for _, t := range r.tickets {
		result = append(result, t)
	}
	return result, nil
}

func (r *fakeTicketRepo) ListByOwner(_ context.Context, ownerID int64) ([]domain.Ticket, error) {
	if r.failWith != nil {
		return nil, r.failWith
	}
	var result []domain.Ticket
	for _, t := range r.tickets {
		if t.OwnerID == ownerID {
			result = append(result, t)
		}
	}
	return result, nil
}

type fakeCommentRepo struct {
	comments map[int64]domain.Comment
	nextID   int64
}

func newFakeCommentRepo() *fakeCommentRepo {
	return &fakeCommentRepo{comments: make(map[int64]domain.Comment), nextID: 1}
}

func (r *fakeCommentRepo) put(comment domain.Comment) {
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now()
	}
	r.comments[comment.ID] = comment
	if comment.ID >= r.nextID {
		r.nextID = comment.ID + 1
	}
}

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = r.nextID
	r.nextID++
	comment.CreatedAt = time.Now()
	r.comments[comment.ID] = *comment
	return nil
}

func (r *fakeCommentRepo) Update(_ context.Context, comment *domain.Comment) error {
	stored, ok := r.comments[comment.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.Content = comment.Content
	stored.IsInternal = comment.IsInternal
	r.comments[comment.ID] = stored
	return nil
}

func (r *fakeCommentRepo) Delete(_ context.Context, id int64) (bool, error) {
	if _, ok := r.comments[id]; !ok {
		return false, nil
	}
	delete(r.comments, id)
	return true, nil
}

func (r *fakeCommentRepo) GetByID(_ context.Context, id int64) (*domain.Comment, error) {
	stored, ok := r.comments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	comment := stored
	return &comment, nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.Comment, error) {
	var result []domain.Comment
	for _, c := range r.comments {
		if c.TicketID == ticketID {
			result = append(result, c)
		}
	}
	return result, nil
}

type fakeCategoryRepo struct {
	categories map[int64]domain.Category
}

func newFakeCategoryRepo(names ...string) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: make(map[int64]domain.Category)}
	for i, name := range names {
		id := int64(i + 1)
		repo.categories[id] = domain.Category{ID: id, Name: name}
	}
	return repo
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	stored, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	category := stored
	return &category, nil
}

func (r *fakeCategoryRepo) ListAll(_ context.Context) ([]domain.Category, error) {
	var result []domain.Category
	for _, c := range r.categories {
		result = append(result, c)
	}
	return result, nil
}

type fakeUserRepo struct {
	users  map[int64]domain.User
	nextID int64
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]domain.User), nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = r.nextID
	r.nextID++
	user.CreatedAt = time.Now()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	stored, ok := r.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	stored.PasswordHash = passwordHash
	r.users[id] = stored
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	stored, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user := stored
	return &user, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if strings.EqualFold(u.Username, username) {
			user := u
			return &user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) lastOfType(eventType events.EventType) (events.Event, bool) {
	for i := len(d.published) - 1; i >= 0; i-- {
		if d.published[i].Type == eventType {
			return d.published[i], true
		}
	}
	return events.Event{}, false
}
