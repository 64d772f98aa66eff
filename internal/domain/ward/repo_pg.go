package ward

import (
	"context"
	"errors"

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

const wardCols = `id, ward_name, ward_type, capacity, occupied_beds, image_path, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, w *Ward) error {
	w.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ward (id, ward_name, ward_type, capacity, occupied_beds, image_path)
		VALUES ($1, $2, $3, $4, 0, $5)`,
		w.ID, w.WardName, w.WardType, w.Capacity, w.ImagePath,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Ward, error) {
	return scanWard(r.conn(ctx).QueryRow(ctx, `SELECT `+wardCols+` FROM ward WHERE id = $1`, id))
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*Ward, error) {
	return scanWard(r.conn(ctx).QueryRow(ctx, `SELECT `+wardCols+` FROM ward WHERE ward_name = $1`, name))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Ward, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM ward`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+wardCols+` FROM ward ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var wards []*Ward
	for rows.Next() {
		w, err := scanWardRows(rows)
		if err != nil {
			return nil, 0, err
		}
		wards = append(wards, w)
	}
	return wards, total, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM ward WHERE id = $1`, id)
	return err
}

func (r *repoPG) ClaimBed(ctx context.Context, wardID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE ward SET occupied_beds = occupied_beds + 1, updated_at = NOW()
		WHERE id = $1 AND occupied_beds < capacity`, wardID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) ReleaseBed(ctx context.Context, wardID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE ward SET occupied_beds = occupied_beds - 1, updated_at = NOW()
		WHERE id = $1 AND occupied_beds > 0`, wardID)
	return err
}

func (r *repoPG) SetOccupiedBeds(ctx context.Context, wardID uuid.UUID, n int) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE ward SET occupied_beds = $2, updated_at = NOW() WHERE id = $1`, wardID, n)
	return err
}

func (r *repoPG) AddMember(ctx context.Context, wardID, patientID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO ward_patient (ward_id, patient_id) VALUES ($1, $2)
		ON CONFLICT (patient_id) DO NOTHING`, wardID, patientID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) RemoveMember(ctx context.Context, wardID, patientID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM ward_patient WHERE ward_id = $1 AND patient_id = $2`, wardID, patientID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) WardOf(ctx context.Context, patientID uuid.UUID) (uuid.UUID, bool, error) {
	var wardID uuid.UUID
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT ward_id FROM ward_patient WHERE patient_id = $1`, patientID).Scan(&wardID)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return wardID, true, nil
}

func (r *repoPG) Members(ctx context.Context, wardID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT patient_id FROM ward_patient WHERE ward_id = $1`, wardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, rows.Err()
}

func (r *repoPG) LeastOccupiedOpen(ctx context.Context) (*Ward, error) {
	w, err := scanWard(r.conn(ctx).QueryRow(ctx, `
		SELECT `+wardCols+` FROM ward
		WHERE occupied_beds < capacity
		ORDER BY occupied_beds, created_at
		LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return w, err
}

func scanWard(row pgx.Row) (*Ward, error) {
	var w Ward
	err := row.Scan(&w.ID, &w.WardName, &w.WardType, &w.Capacity, &w.OccupiedBeds,
		&w.ImagePath, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func scanWardRows(rows pgx.Rows) (*Ward, error) {
	var w Ward
	err := rows.Scan(&w.ID, &w.WardName, &w.WardType, &w.Capacity, &w.OccupiedBeds,
		&w.ImagePath, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}
