package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/servicedesk-io/servicedesk/internal/domain"
)

// CommentRepository manages ticket comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	Update(ctx context.Context, comment *domain.Comment) error
	Delete(ctx context.Context, id int64) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.Comment, error)
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository builds repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, author_id, content, is_internal)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.AuthorID,
		comment.Content,
		comment.IsInternal,
	).Scan(&comment.ID, &comment.CreatedAt)
}

// Update rewrites content and the internal flag; identity columns stay fixed.
func (r *commentRepository) Update(ctx context.Context, comment *domain.Comment) error {
	cmd, err := r.pool.Exec(ctx,
		`UPDATE comments SET content=$1, is_internal=$2 WHERE id=$3`,
		comment.Content, comment.IsInternal, comment.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *commentRepository) Delete(ctx context.Context, id int64) (bool, error) {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM comments WHERE id=$1`, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*domain.Comment, error) {
	var comment domain.Comment
	err := r.pool.QueryRow(ctx,
		`SELECT id, ticket_id, author_id, content, is_internal, created_at FROM comments WHERE id=$1`, id,
	).Scan(
		&comment.ID,
		&comment.TicketID,
		&comment.AuthorID,
		&comment.Content,
		&comment.IsInternal,
		&comment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, author_id, content, is_internal, created_at
        FROM comments WHERE ticket_id=$1 ORDER BY created_at ASC, id ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.AuthorID,
			&comment.Content,
			&comment.IsInternal,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, comment)
	}
	return result, rows.Err()
}
