package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
)

var (
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrTDSEntryNotFound = errors.New("tds entry not found")
)

type InvoiceRepository interface {
	GetByID(id int64) (*models.Invoice, error)
	GetByIDForUpdate(tx *sql.Tx, id int64) (*models.Invoice, error)
	ApplyPayment(tx *sql.Tx, invoiceID int64, gross, net decimal.Decimal) error
	ApplyDNCN(tx *sql.Tx, invoiceID int64, payableDelta, dncnDelta decimal.Decimal) error
	InsertPayment(tx *sql.Tx, payment *models.InvoicePayment) error
	ListPayments(invoiceID int64) ([]*models.InvoicePayment, error)
	InsertTDSEntry(tx *sql.Tx, entry *models.TDSEntry) error
	GetTDSEntryForUpdate(tx *sql.Tx, id int64) (*models.TDSEntry, error)
	MarkTDSRemitted(tx *sql.Tx, id int64, remittedDate time.Time) error
}

type invoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

const invoiceColumns = `id, party_type, party_id, invoice_number, payable, payment, dncn,
		       created_at, updated_at`

func scanInvoice(row *sql.Row) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := row.Scan(
		&inv.ID,
		&inv.PartyType,
		&inv.PartyID,
		&inv.InvoiceNumber,
		&inv.Payable,
		&inv.Payment,
		&inv.DNCN,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrInvoiceNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invoiceRepository) GetByID(id int64) (*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE id = ?
	`
	return scanInvoice(r.db.QueryRow(query, id))
}

func (r *invoiceRepository) GetByIDForUpdate(tx *sql.Tx, id int64) (*models.Invoice, error) {
	query := `
		SELECT ` + invoiceColumns + `
		FROM invoices
		WHERE id = ?
		FOR UPDATE
	`
	return scanInvoice(tx.QueryRow(query, id))
}

// ApplyPayment deducts the gross amount (net cash + TDS) from the liability
// and records only the net cash as payment received.
func (r *invoiceRepository) ApplyPayment(tx *sql.Tx, invoiceID int64, gross, net decimal.Decimal) error {
	query := `
		UPDATE invoices
		SET payable = payable - ?,
		    payment = payment + ?,
		    updated_at = ?
		WHERE id = ?
	`
	result, err := tx.Exec(query, gross, net, time.Now(), invoiceID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepository) ApplyDNCN(tx *sql.Tx, invoiceID int64, payableDelta, dncnDelta decimal.Decimal) error {
	query := `
		UPDATE invoices
		SET payable = payable + ?,
		    dncn = dncn + ?,
		    updated_at = ?
		WHERE id = ?
	`
	result, err := tx.Exec(query, payableDelta, dncnDelta, time.Now(), invoiceID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInvoiceNotFound
	}
	return nil
}

func (r *invoiceRepository) InsertPayment(tx *sql.Tx, payment *models.InvoicePayment) error {
	query := `
		INSERT INTO invoice_payments (
			invoice_id, amount, tds_amount, payment_date, remarks, created_by
		) VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		payment.InvoiceID,
		payment.Amount,
		payment.TDSAmount,
		payment.PaymentDate,
		payment.Remarks,
		payment.CreatedBy,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	payment.ID = id
	return nil
}

func (r *invoiceRepository) ListPayments(invoiceID int64) ([]*models.InvoicePayment, error) {
	query := `
		SELECT id, invoice_id, amount, tds_amount, payment_date, remarks,
		       created_by, created_at
		FROM invoice_payments
		WHERE invoice_id = ?
		ORDER BY id DESC
	`
	rows, err := r.db.Query(query, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*models.InvoicePayment
	for rows.Next() {
		p := &models.InvoicePayment{}
		err := rows.Scan(
			&p.ID,
			&p.InvoiceID,
			&p.Amount,
			&p.TDSAmount,
			&p.PaymentDate,
			&p.Remarks,
			&p.CreatedBy,
			&p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *invoiceRepository) InsertTDSEntry(tx *sql.Tx, entry *models.TDSEntry) error {
	query := `
		INSERT INTO tds_entries (
			invoice_id, invoice_payment_id, amount, status
		) VALUES (?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		entry.InvoiceID,
		entry.InvoicePaymentID,
		entry.Amount,
		entry.Status,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

func (r *invoiceRepository) GetTDSEntryForUpdate(tx *sql.Tx, id int64) (*models.TDSEntry, error) {
	entry := &models.TDSEntry{}
	query := `
		SELECT id, invoice_id, invoice_payment_id, amount, status,
		       remitted_date, created_at
		FROM tds_entries
		WHERE id = ?
		FOR UPDATE
	`
	err := tx.QueryRow(query, id).Scan(
		&entry.ID,
		&entry.InvoiceID,
		&entry.InvoicePaymentID,
		&entry.Amount,
		&entry.Status,
		&entry.RemittedDate,
		&entry.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrTDSEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *invoiceRepository) MarkTDSRemitted(tx *sql.Tx, id int64, remittedDate time.Time) error {
	query := `
		UPDATE tds_entries
		SET status = ?,
		    remitted_date = ?
		WHERE id = ?
	`
	result, err := tx.Exec(query, models.TDSStatusPaid, remittedDate, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrTDSEntryNotFound
	}
	return nil
}
