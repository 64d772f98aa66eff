package patient

import (
	"context"
	"time"

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

const patientCols = `id, patient_name, patient_caste, age, gender, contact, email, password_hash,
	status, ward_id, conditions, image_path, address, admission_date, discharge_date,
	ai_risk_score, ai_summary, ai_next_appointment, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient
			(id, patient_name, patient_caste, age, gender, contact, email, password_hash,
			 status, ward_id, conditions, image_path, address, admission_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		p.ID, p.PatientName, p.Caste, p.Age, p.Gender, p.Contact, p.Email,
		p.PasswordHash, p.Status, p.WardID, p.Conditions, p.ImagePath, p.Address,
		p.AdmissionDate,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) GetByContact(ctx context.Context, contact string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE contact = $1`, contact))
}

func (r *repoPG) GetByEmail(ctx context.Context, email string) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx,
		`SELECT `+patientCols+` FROM patient WHERE email = $1`, email))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+patientCols+` FROM patient ORDER BY created_at LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatientRows(rows)
		if err != nil {
			return nil, 0, err
		}
		patients = append(patients, p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			patient_name = $2, patient_caste = $3, age = $4, gender = $5, email = $6,
			password_hash = $7, status = $8, ward_id = $9, conditions = $10,
			image_path = $11, address = $12, discharge_date = $13, updated_at = NOW()
		WHERE id = $1`,
		p.ID, p.PatientName, p.Caste, p.Age, p.Gender, p.Email, p.PasswordHash,
		p.Status, p.WardID, p.Conditions, p.ImagePath, p.Address, p.DischargeDate,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *repoPG) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&exists)
	return exists, err
}

func (r *repoPG) LinkDoctor(ctx context.Context, patientID, doctorID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient_doctor (patient_id, doctor_id) VALUES ($1, $2)
		ON CONFLICT DO NOTHING`, patientID, doctorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) UnlinkDoctor(ctx context.Context, patientID, doctorID uuid.UUID) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM patient_doctor WHERE patient_id = $1 AND doctor_id = $2`, patientID, doctorID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) UnlinkAllDoctors(ctx context.Context, patientID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM patient_doctor WHERE patient_id = $1`, patientID)
	return err
}

func (r *repoPG) DoctorIDs(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT doctor_id FROM patient_doctor WHERE patient_id = $1`, patientID)
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

func (r *repoPG) SetAIFields(ctx context.Context, id uuid.UUID, score float64, summary string, next time.Time) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET ai_risk_score = $2, ai_summary = $3, ai_next_appointment = $4,
			updated_at = NOW()
		WHERE id = $1`, id, score, summary, next)
	return err
}

func (r *repoPG) CountAll(ctx context.Context) (int, error) {
	var n int
	err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&n)
	return n, err
}

func (r *repoPG) CountByGender(ctx context.Context) (map[string]int, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT gender, COUNT(*) FROM patient GROUP BY gender`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var gender string
		var n int
		if err := rows.Scan(&gender, &n); err != nil {
			return nil, err
		}
		counts[gender] = n
	}
	return counts, rows.Err()
}

func (r *repoPG) CountByAgeBucket(ctx context.Context) (map[string]int, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT CASE
			WHEN age < 18 THEN '0-17'
			WHEN age < 40 THEN '18-39'
			WHEN age < 60 THEN '40-59'
			ELSE '60+'
		END AS bucket, COUNT(*)
		FROM patient GROUP BY bucket`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var bucket string
		var n int
		if err := rows.Scan(&bucket, &n); err != nil {
			return nil, err
		}
		counts[bucket] = n
	}
	return counts, rows.Err()
}

func (r *repoPG) AverageRisk(ctx context.Context) (float64, error) {
	var avg *float64
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT AVG(ai_risk_score) FROM patient WHERE ai_risk_score IS NOT NULL`).Scan(&avg)
	if err != nil {
		return 0, err
	}
	if avg == nil {
		return 0, nil
	}
	return *avg, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.PatientName, &p.Caste, &p.Age, &p.Gender, &p.Contact,
		&p.Email, &p.PasswordHash, &p.Status, &p.WardID, &p.Conditions, &p.ImagePath,
		&p.Address, &p.AdmissionDate, &p.DischargeDate, &p.AIRiskScore, &p.AISummary,
		&p.AINextAppointment, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPatientRows(rows pgx.Rows) (*Patient, error) {
	var p Patient
	err := rows.Scan(&p.ID, &p.PatientName, &p.Caste, &p.Age, &p.Gender, &p.Contact,
		&p.Email, &p.PasswordHash, &p.Status, &p.WardID, &p.Conditions, &p.ImagePath,
		&p.Address, &p.AdmissionDate, &p.DischargeDate, &p.AIRiskScore, &p.AISummary,
		&p.AINextAppointment, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
