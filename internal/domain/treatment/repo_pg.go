package treatment

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

const recordCols = `id, patient_id, doctor_id, ward_id, treatment_details, notes,
	admission_date, discharge_date, transferred, initial, updated_at`

func (r *repoPG) Create(ctx context.Context, rec *Record) error {
	rec.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_record
			(id, patient_id, doctor_id, ward_id, treatment_details, notes,
			 admission_date, discharge_date, transferred, initial)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		rec.ID, rec.PatientID, rec.DoctorID, rec.WardID, rec.TreatmentDetails,
		rec.Notes, rec.AdmissionDate, rec.DischargeDate, rec.Transferred, rec.Initial,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Record, error) {
	return scanRecord(r.conn(ctx).QueryRow(ctx,
		`SELECT `+recordCols+` FROM treatment_record WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Record, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM treatment_record`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recordCols+` FROM treatment_record
		ORDER BY admission_date DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	records, err := collectRecords(rows)
	return records, total, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Record, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+recordCols+` FROM treatment_record
		WHERE patient_id = $1 ORDER BY admission_date`, patientID)
	if err != nil {
		return nil, err
	}
	return collectRecords(rows)
}

func (r *repoPG) Update(ctx context.Context, rec *Record) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment_record SET
			doctor_id = $2, ward_id = $3, treatment_details = $4, notes = $5,
			discharge_date = $6, transferred = $7, updated_at = NOW()
		WHERE id = $1`,
		rec.ID, rec.DoctorID, rec.WardID, rec.TreatmentDetails, rec.Notes,
		rec.DischargeDate, rec.Transferred,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM treatment_record WHERE id = $1`, id)
	return err
}

func (r *repoPG) LatestAmendable(ctx context.Context, patientID uuid.UUID) (*Record, error) {
	rec, err := scanRecord(r.conn(ctx).QueryRow(ctx, `
		SELECT `+recordCols+` FROM treatment_record
		WHERE patient_id = $1 AND NOT initial AND discharge_date IS NULL
		ORDER BY admission_date DESC LIMIT 1`, patientID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return rec, err
}

func (r *repoPG) AddTransfer(ctx context.Context, tr *Transfer) error {
	tr.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment_transfer (id, record_id, previous_ward_id, new_ward_id, transferred_at)
		VALUES ($1, $2, $3, $4, $5)`,
		tr.ID, tr.RecordID, tr.PreviousWardID, tr.NewWardID, tr.TransferredAt,
	)
	return err
}

func (r *repoPG) TransfersByRecord(ctx context.Context, recordID uuid.UUID) ([]Transfer, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, record_id, previous_ward_id, new_ward_id, transferred_at
		FROM treatment_transfer WHERE record_id = $1 ORDER BY transferred_at`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []Transfer
	for rows.Next() {
		var tr Transfer
		if err := rows.Scan(&tr.ID, &tr.RecordID, &tr.PreviousWardID, &tr.NewWardID, &tr.TransferredAt); err != nil {
			return nil, err
		}
		transfers = append(transfers, tr)
	}
	return transfers, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.WardID,
		&rec.TreatmentDetails, &rec.Notes, &rec.AdmissionDate, &rec.DischargeDate,
		&rec.Transferred, &rec.Initial, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func collectRecords(rows pgx.Rows) ([]*Record, error) {
	defer rows.Close()
	var records []*Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.PatientID, &rec.DoctorID, &rec.WardID,
			&rec.TreatmentDetails, &rec.Notes, &rec.AdmissionDate, &rec.DischargeDate,
			&rec.Transferred, &rec.Initial, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}
