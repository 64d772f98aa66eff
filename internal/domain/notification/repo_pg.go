package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/carebridge/hms/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const notifCols = `id, user_id, role, type, message, is_read, created_at`

func (r *repoPG) Create(ctx context.Context, n *Notification) error {
	n.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO notification (id, user_id, role, type, message, is_read)
		VALUES ($1, $2, $3, $4, $5, FALSE)`,
		n.ID, n.UserID, n.Role, n.Type, n.Message,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Notification, error) {
	var n Notification
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+notifCols+` FROM notification WHERE id = $1`, id).
		Scan(&n.ID, &n.UserID, &n.Role, &n.Type, &n.Message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repoPG) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Notification, error) {
	return r.collect(r.conn(ctx).Query(ctx, `
		SELECT `+notifCols+` FROM notification
		WHERE user_id = $1 ORDER BY created_at DESC`, userID))
}

func (r *repoPG) ListByRole(ctx context.Context, role string) ([]*Notification, error) {
	return r.collect(r.conn(ctx).Query(ctx, `
		SELECT `+notifCols+` FROM notification
		WHERE role = $1 ORDER BY created_at DESC`, role))
}

func (r *repoPG) MarkRead(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE notification SET is_read = TRUE WHERE id = $1`, id)
	return err
}

func (r *repoPG) MarkAllReadByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE notification SET is_read = TRUE WHERE user_id = $1`, userID)
	return err
}

func (r *repoPG) MarkAllReadByRole(ctx context.Context, role string) error {
	_, err := r.conn(ctx).Exec(ctx, `UPDATE notification SET is_read = TRUE WHERE role = $1`, role)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM notification WHERE id = $1`, id)
	return err
}

func (r *repoPG) collect(rows pgx.Rows, err error) ([]*Notification, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Role, &n.Type, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, &n)
	}
	return items, rows.Err()
}
