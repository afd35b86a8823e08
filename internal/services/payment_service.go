package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Amitkumar-56/mpcpl-backend/internal/auth"
	"github.com/Amitkumar-56/mpcpl-backend/internal/database"
	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
	"github.com/Amitkumar-56/mpcpl-backend/internal/repositories"
)

type PaymentService struct {
	db          *sql.DB
	invoiceRepo repositories.InvoiceRepository
	audit       *AuditLogger
}

func NewPaymentService(
	db *sql.DB,
	invoiceRepo repositories.InvoiceRepository,
	audit *AuditLogger,
) *PaymentService {
	return &PaymentService{
		db:          db,
		invoiceRepo: invoiceRepo,
		audit:       audit,
	}
}

type InvoicePaymentInput struct {
	Amount      decimal.Decimal `json:"amount"`
	TDSAmount   decimal.Decimal `json:"tds_amount"`
	PaymentDate string          `json:"payment_date"`
	Remarks     string          `json:"remarks"`
}

// RecordInvoicePayment applies a payment against a payable invoice. The
// payable reduction is the gross amount (net cash + TDS withheld) while the
// payment-received figure grows by the net cash only; a withheld TDS portion
// gets its own Due entry until remitted. Rejected when the net amount is not
// positive or the gross would drive payable negative.
func (s *PaymentService) RecordInvoicePayment(ctx context.Context, actor auth.Actor, invoiceID int64, input InvoicePaymentInput) (*models.InvoicePayment, error) {
	if !input.Amount.IsPositive() || input.TDSAmount.IsNegative() {
		return nil, ErrInvalidPaymentAmount
	}

	gross := input.Amount.Add(input.TDSAmount)
	payment := &models.InvoicePayment{
		InvoiceID:   invoiceID,
		Amount:      input.Amount,
		TDSAmount:   input.TDSAmount,
		PaymentDate: input.PaymentDate,
		Remarks:     input.Remarks,
		CreatedBy:   actor.Name,
	}

	var before, after *models.Invoice
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		invoice, err := s.invoiceRepo.GetByIDForUpdate(tx, invoiceID)
		if err != nil {
			return err
		}

		if gross.GreaterThan(invoice.Payable) {
			return ErrPaymentExceedsPayable
		}

		if err := s.invoiceRepo.ApplyPayment(tx, invoiceID, gross, input.Amount); err != nil {
			return fmt.Errorf("failed to apply payment: %w", err)
		}
		if err := s.invoiceRepo.InsertPayment(tx, payment); err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}

		if input.TDSAmount.IsPositive() {
			entry := &models.TDSEntry{
				InvoiceID:        invoiceID,
				InvoicePaymentID: payment.ID,
				Amount:           input.TDSAmount,
				Status:           models.TDSStatusDue,
			}
			if err := s.invoiceRepo.InsertTDSEntry(tx, entry); err != nil {
				return fmt.Errorf("failed to insert tds entry: %w", err)
			}
		}

		updated := *invoice
		updated.Payable = invoice.Payable.Sub(gross)
		updated.Payment = invoice.Payment.Add(input.Amount)

		before = invoice
		after = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, "invoice", invoiceID, models.AuditActionUpdate, input.Remarks, before, after)
	return payment, nil
}

type DNCNInput struct {
	Kind    string          `json:"kind"`
	Amount  decimal.Decimal `json:"amount"`
	Remarks string          `json:"remarks"`
}

// ApplyDNCN applies a debit or credit note adjustment to an invoice. A debit
// note increases the payable, a credit note decreases it but never below zero.
func (s *PaymentService) ApplyDNCN(ctx context.Context, actor auth.Actor, invoiceID int64, input DNCNInput) (*models.Invoice, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}
	if input.Kind != models.DNCNDebit && input.Kind != models.DNCNCredit {
		return nil, fmt.Errorf("invalid dncn kind %q", input.Kind)
	}

	var before, after *models.Invoice
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		invoice, err := s.invoiceRepo.GetByIDForUpdate(tx, invoiceID)
		if err != nil {
			return err
		}

		delta := input.Amount
		if input.Kind == models.DNCNCredit {
			if input.Amount.GreaterThan(invoice.Payable) {
				return ErrCreditExceedsPayable
			}
			delta = input.Amount.Neg()
		}

		if err := s.invoiceRepo.ApplyDNCN(tx, invoiceID, delta, delta); err != nil {
			return fmt.Errorf("failed to apply dncn adjustment: %w", err)
		}

		updated := *invoice
		updated.Payable = invoice.Payable.Add(delta)
		updated.DNCN = invoice.DNCN.Add(delta)

		before = invoice
		after = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, "invoice", invoiceID, models.AuditActionUpdate, input.Remarks, before, after)
	return after, nil
}

// RemitTDS flips a Due TDS entry to Paid with the remittance date. Remitting
// an already-paid entry is rejected.
func (s *PaymentService) RemitTDS(ctx context.Context, actor auth.Actor, tdsEntryID int64) (*models.TDSEntry, error) {
	var before, after *models.TDSEntry
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		entry, err := s.invoiceRepo.GetTDSEntryForUpdate(tx, tdsEntryID)
		if err != nil {
			return err
		}
		if entry.Status == models.TDSStatusPaid {
			return ErrTDSAlreadyRemitted
		}

		remittedDate := time.Now()
		if err := s.invoiceRepo.MarkTDSRemitted(tx, tdsEntryID, remittedDate); err != nil {
			return fmt.Errorf("failed to mark tds remitted: %w", err)
		}

		updated := *entry
		updated.Status = models.TDSStatusPaid
		updated.RemittedDate = sql.NullTime{Time: remittedDate, Valid: true}

		before = entry
		after = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, "tds_entry", tdsEntryID, models.AuditActionUpdate, "tds remitted", before, after)
	return after, nil
}

func (s *PaymentService) GetInvoice(ctx context.Context, invoiceID int64) (*models.Invoice, error) {
	return s.invoiceRepo.GetByID(invoiceID)
}

func (s *PaymentService) ListInvoicePayments(ctx context.Context, invoiceID int64) ([]*models.InvoicePayment, error) {
	if _, err := s.invoiceRepo.GetByID(invoiceID); err != nil {
		return nil, err
	}
	return s.invoiceRepo.ListPayments(invoiceID)
}
