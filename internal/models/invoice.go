package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice party types
const (
	PartySupplier    = "supplier"
	PartyTransporter = "transporter"
)

// TDS entry statuses
const (
	TDSStatusDue  = "Due"
	TDSStatusPaid = "Paid"
)

// DNCN kinds
const (
	DNCNDebit  = "debit"
	DNCNCredit = "credit"
)

// Invoice is a supplier or transporter payable invoice.
// Payable is the outstanding liability, Payment the cash received so far,
// DNCN the net debit/credit note adjustment applied.
type Invoice struct {
	ID            int64           `db:"id" json:"id"`
	PartyType     string          `db:"party_type" json:"party_type"`
	PartyID       int64           `db:"party_id" json:"party_id"`
	InvoiceNumber string          `db:"invoice_number" json:"invoice_number"`
	Payable       decimal.Decimal `db:"payable" json:"payable"`
	Payment       decimal.Decimal `db:"payment" json:"payment"`
	DNCN          decimal.Decimal `db:"dncn" json:"dncn"`
	CreatedAt     time.Time       `db:"created_at" json:"-"`
	UpdatedAt     time.Time       `db:"updated_at" json:"-"`
}

// InvoicePayment is one payment applied against an invoice.
// Amount is the net cash paid; TDSAmount the statutory withholding, so the
// payable reduction for this payment was Amount + TDSAmount.
type InvoicePayment struct {
	ID          int64           `db:"id" json:"id"`
	InvoiceID   int64           `db:"invoice_id" json:"invoice_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	TDSAmount   decimal.Decimal `db:"tds_amount" json:"tds_amount"`
	PaymentDate string          `db:"payment_date" json:"payment_date"`
	Remarks     string          `db:"remarks" json:"remarks"`
	CreatedBy   string          `db:"created_by" json:"created_by"`
	CreatedAt   time.Time       `db:"created_at" json:"-"`
}

// TDSEntry tracks a withheld TDS portion until it is remitted
type TDSEntry struct {
	ID               int64           `db:"id" json:"id"`
	InvoiceID        int64           `db:"invoice_id" json:"invoice_id"`
	InvoicePaymentID int64           `db:"invoice_payment_id" json:"invoice_payment_id"`
	Amount           decimal.Decimal `db:"amount" json:"amount"`
	Status           string          `db:"status" json:"status"`
	RemittedDate     sql.NullTime    `db:"remitted_date" json:"remitted_date"`
	CreatedAt        time.Time       `db:"created_at" json:"-"`
}
