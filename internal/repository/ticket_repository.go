package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicedesk-io/servicedesk/internal/domain"
)

// ErrVersionConflict indicates the row changed since it was loaded. Callers
// must re-fetch and surface a conflict; nothing retries here.
var ErrVersionConflict = errors.New("ticket modified concurrently")

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListAll(ctx context.Context) ([]domain.Ticket, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]domain.Ticket, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, status, priority, owner_user_id, category_id)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, version, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.OwnerID,
		ticket.CategoryID,
	).Scan(&ticket.ID, &ticket.Version, &ticket.CreatedAt, &ticket.UpdatedAt)
}

// Update writes mutable fields guarded by the version token. updated_at is
// stamped by the store trigger and read back, never written from here.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, status=$3, priority=$4,
            category_id=$5, version=version+1
        WHERE id=$6 AND version=$7
        RETURNING version, updated_at`
	err := r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Status,
		ticket.Priority,
		ticket.CategoryID,
		ticket.ID,
		ticket.Version,
	).Scan(&ticket.Version, &ticket.UpdatedAt)
	if err == nil {
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	// Zero rows: either the ticket is gone or the version moved.
	var exists bool
	if checkErr := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tickets WHERE id=$1)`, ticket.ID).Scan(&exists); checkErr != nil {
		return checkErr
	}
	if exists {
		return ErrVersionConflict
	}
	return pgx.ErrNoRows
}

func (r *ticketRepository) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

const ticketColumns = `id, title, description, status, priority, owner_user_id, category_id, version, created_at, updated_at`

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	var ticket domain.Ticket
	err := r.pool.QueryRow(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE id=$1`, id).Scan(
		&ticket.ID,
		&ticket.Title,
		&ticket.Description,
		&ticket.Status,
		&ticket.Priority,
		&ticket.OwnerID,
		&ticket.CategoryID,
		&ticket.Version,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) ListAll(ctx context.Context) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ticketColumns+` FROM tickets ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Ticket, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+ticketColumns+` FROM tickets WHERE owner_user_id=$1 ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		var ticket domain.Ticket
		if err := rows.Scan(
			&ticket.ID,
			&ticket.Title,
			&ticket.Description,
			&ticket.Status,
			&ticket.Priority,
			&ticket.OwnerID,
			&ticket.CategoryID,
			&ticket.Version,
			&ticket.CreatedAt,
			&ticket.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, ticket)
	}
	return result, rows.Err()
}
