package billing

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

const billCols = `id, patient_id, total_amount, paid_amount, balance, status, created_at, updated_at`

func (r *repoPG) CreateBill(ctx context.Context, b *Bill) error {
	b.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO billing (id, patient_id, total_amount, paid_amount, balance, status)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		b.ID, b.PatientID, b.TotalAmount, b.PaidAmount, b.Balance, b.Status,
	)
	return err
}

func (r *repoPG) AddItem(ctx context.Context, item *Item) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO billing_item (id, bill_id, description, quantity, unit_price, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		item.ID, item.BillID, item.Description, item.Quantity, item.UnitPrice, item.TotalPrice,
	)
	return err
}

func (r *repoPG) GetBill(ctx context.Context, id uuid.UUID) (*Bill, error) {
	var b Bill
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+billCols+` FROM billing WHERE id = $1`, id).
		Scan(&b.ID, &b.PatientID, &b.TotalAmount, &b.PaidAmount, &b.Balance,
			&b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repoPG) ListBills(ctx context.Context, limit, offset int) ([]*Bill, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM billing`).Scan(&total); err != nil {
		return nil, 0, err
	}
	bills, err := r.collect(r.conn(ctx).Query(ctx, `
		SELECT `+billCols+` FROM billing ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset))
	return bills, total, err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*Bill, error) {
	return r.collect(r.conn(ctx).Query(ctx, `
		SELECT `+billCols+` FROM billing WHERE patient_id = $1 ORDER BY created_at DESC`,
		patientID))
}

func (r *repoPG) UpdateBill(ctx context.Context, b *Bill) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE billing SET paid_amount = $2, balance = $3, status = $4, updated_at = NOW()
		WHERE id = $1`,
		b.ID, b.PaidAmount, b.Balance, b.Status,
	)
	return err
}

func (r *repoPG) Items(ctx context.Context, billID uuid.UUID) ([]Item, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, bill_id, description, quantity, unit_price, total_price
		FROM billing_item WHERE bill_id = $1`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.BillID, &it.Description, &it.Quantity,
			&it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *repoPG) CreateInvoice(ctx context.Context, inv *Invoice) error {
	inv.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO invoice (id, bill_id, invoice_number, amount, status, date)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		inv.ID, inv.BillID, inv.InvoiceNumber, inv.Amount, inv.Status, inv.Date,
	)
	return err
}

func (r *repoPG) InvoiceByBill(ctx context.Context, billID uuid.UUID) (*Invoice, error) {
	var inv Invoice
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT id, bill_id, invoice_number, amount, status, date
		FROM invoice WHERE bill_id = $1`, billID).
		Scan(&inv.ID, &inv.BillID, &inv.InvoiceNumber, &inv.Amount, &inv.Status, &inv.Date)
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *repoPG) UpdateInvoiceStatus(ctx context.Context, billID uuid.UUID, status BillStatus) error {
	_, err := r.conn(ctx).Exec(ctx,
		`UPDATE invoice SET status = $2 WHERE bill_id = $1`, billID, status)
	return err
}

func (r *repoPG) AddAudit(ctx context.Context, entry *AuditEntry) error {
	entry.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO billing_audit (id, bill_id, action, amount, method, user_id, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		entry.ID, entry.BillID, entry.Action, entry.Amount, entry.Method, entry.UserID, entry.Details,
	)
	return err
}

func (r *repoPG) AuditByBill(ctx context.Context, billID uuid.UUID) ([]AuditEntry, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, bill_id, action, amount, method, user_id, details, created_at
		FROM billing_audit WHERE bill_id = $1 ORDER BY created_at`, billID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.BillID, &e.Action, &e.Amount, &e.Method,
			&e.UserID, &e.Details, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *repoPG) collect(rows pgx.Rows, err error) ([]*Bill, error) {
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []*Bill
	for rows.Next() {
		var b Bill
		if err := rows.Scan(&b.ID, &b.PatientID, &b.TotalAmount, &b.PaidAmount,
			&b.Balance, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		bills = append(bills, &b)
	}
	return bills, rows.Err()
}
