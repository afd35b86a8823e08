package services

import "errors"

var (
	ErrInvalidAdjustment       = errors.New("exactly one of increase_amount or decrease_amount must be provided")
	ErrInsufficientCreditLimit = errors.New("insufficient credit limit")
	ErrInvalidPaymentAmount    = errors.New("payment amount must be greater than zero")
	ErrPaymentExceedsDue       = errors.New("payment exceeds commission due")
	ErrPaymentExceedsPayable   = errors.New("payment exceeds outstanding payable")
	ErrCreditExceedsPayable    = errors.New("credit note exceeds outstanding payable")
	ErrTDSAlreadyRemitted      = errors.New("tds entry already remitted")
	ErrInvalidCommissionRate   = errors.New("commission rate must not be negative")
)
