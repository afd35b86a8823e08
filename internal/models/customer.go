package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Customer client types
const (
	ClientTypePrepaid  = "prepaid"
	ClientTypePostpaid = "postpaid"
	ClientTypeDayLimit = "day_limit"
)

// Filling request statuses
const (
	FillingStatusPending    = "Pending"
	FillingStatusProcessing = "Processing"
	FillingStatusCompleted  = "Completed"
	FillingStatusCancelled  = "Cancelled"
)

// Payment status values on a filling request
const (
	PaymentStatusUnpaid = 0
	PaymentStatusPaid   = 1
)

// Customer represents a fuel customer account
type Customer struct {
	ID         int64         `db:"id" json:"id"`
	Name       string        `db:"name" json:"name"`
	Code       string        `db:"code" json:"code"`
	ClientType string        `db:"client_type" json:"client_type"`
	DayLimit   int           `db:"day_limit" json:"day_limit"`
	AgentID    sql.NullInt64 `db:"agent_id" json:"agent_id"`
	Status     int           `db:"status" json:"status"`
	CreatedAt  time.Time     `db:"created_at" json:"-"`
	UpdatedAt  time.Time     `db:"updated_at" json:"-"`
}

// CustomerBalance tracks a customer's credit ceiling and usage.
// Invariant: CstLimit == AmtLimit + Balance after every adjustment.
type CustomerBalance struct {
	ID          int64           `db:"id" json:"id"`
	ComID       int64           `db:"com_id" json:"com_id"`
	CstLimit    decimal.Decimal `db:"cst_limit" json:"cst_limit"`
	AmtLimit    decimal.Decimal `db:"amtlimit" json:"amtlimit"`
	Balance     decimal.Decimal `db:"balance" json:"balance"`
	HoldBalance decimal.Decimal `db:"hold_balance" json:"hold_balance"`
	DayAmount   decimal.Decimal `db:"day_amount" json:"day_amount"`
	LimitExpiry sql.NullTime    `db:"limit_expiry" json:"limit_expiry"`
	CreatedAt   time.Time       `db:"created_at" json:"-"`
	UpdatedAt   time.Time       `db:"updated_at" json:"-"`
}

// FillingHistory is an append-only record of a credit limit adjustment
type FillingHistory struct {
	ID        int64           `db:"id" json:"id"`
	ComID     int64           `db:"com_id" json:"com_id"`
	Action    string          `db:"action" json:"action"`
	Amount    decimal.Decimal `db:"amount" json:"amount"`
	OldLimit  decimal.Decimal `db:"old_limit" json:"old_limit"`
	NewLimit  decimal.Decimal `db:"new_limit" json:"new_limit"`
	Remarks   string          `db:"remarks" json:"remarks"`
	CreatedBy string          `db:"created_by" json:"created_by"`
	CreatedAt time.Time       `db:"created_at" json:"-"`
}

// Credit limit adjustment actions
const (
	LimitActionIncrease = "increase"
	LimitActionDecrease = "decrease"
)

// UnpaidUsage aggregates a customer's unpaid completed transactions,
// the inputs of the eligibility check.
type UnpaidUsage struct {
	UnpaidDays      int             `json:"unpaid_days"`
	OldestUnpaidAge int             `json:"oldest_unpaid_age"`
	CreditUsed      decimal.Decimal `json:"credit_used"`
}
