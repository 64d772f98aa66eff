package doctor

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

const doctorCols = `id, name, grade, email, password_hash, image_path, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor (id, name, grade, email, password_hash, image_path)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		d.ID, d.Name, d.Grade, d.Email, d.PasswordHash, d.ImagePath,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Doctor, error) {
	return scanDoctor(r.conn(ctx).QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE email = $1`, email))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Doctor, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM doctor`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+doctorCols+` FROM doctor ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var doctors []*Doctor
	for rows.Next() {
		var d Doctor
		if err := rows.Scan(&d.ID, &d.Name, &d.Grade, &d.Email, &d.PasswordHash,
			&d.ImagePath, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		doctors = append(doctors, &d)
	}
	return doctors, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, d *Doctor) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE doctor SET name = $2, grade = $3, email = $4, password_hash = $5, image_path = $6,
			updated_at = NOW()
		WHERE id = $1`,
		d.ID, d.Name, d.Grade, d.Email, d.PasswordHash, d.ImagePath,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	return err
}

func (r *repoPG) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM doctor WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) LinkPatient(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_doctor (patient_id, doctor_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, patientID, doctorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) UnlinkPatient(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM patient_doctor WHERE patient_id = $1 AND doctor_id = $2`, patientID, doctorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) UnlinkAllPatients(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_doctor WHERE doctor_id = $1`, doctorID)
	return err
}

func (r *repoPG) TreatedPatients(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error) {
	return scanIDs(r.conn(ctx).Query(ctx,
		`SELECT patient_id FROM patient_doctor WHERE doctor_id = $1`, doctorID))
}

func (r *repoPG) LinkWard(ctx context.Context, doctorID, wardID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO doctor_ward (doctor_id, ward_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, doctorID, wardID)
	return err
}

func (r *repoPG) UnlinkAllWards(ctx context.Context, doctorID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM doctor_ward WHERE doctor_id = $1`, doctorID)
	return err
}

func (r *repoPG) Wards(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error) {
	return scanIDs(r.conn(ctx).Query(ctx,
		`SELECT ward_id FROM doctor_ward WHERE doctor_id = $1`, doctorID))
}

func (r *repoPG) LeastLoaded(ctx context.Context) (*Doctor, error) {
	d, err := scanDoctor(r.conn(ctx).QueryRow(ctx, `
		SELECT d.id, d.name, d.grade, d.email, d.password_hash, d.image_path, d.created_at, d.updated_at
		FROM doctor d
		LEFT JOIN patient_doctor pd ON pd.doctor_id = d.id
		GROUP BY d.id
		ORDER BY COUNT(pd.patient_id), d.created_at
		LIMIT 1`))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return d, err
}

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Grade, &d.Email, &d.PasswordHash, &d.ImagePath,
		&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func scanIDs(rows pgx.Rows, err error) ([]uuid.UUID, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
