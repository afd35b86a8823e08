package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Agent represents a commission agent
type Agent struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Status    int       `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// AgentCommission is a configured per-customer/per-product commission rate
type AgentCommission struct {
	ID            int64           `db:"id" json:"id"`
	AgentID       int64           `db:"agent_id" json:"agent_id"`
	ComID         int64           `db:"com_id" json:"com_id"`
	ProductCodeID int64           `db:"product_code_id" json:"product_code_id"`
	Rate          decimal.Decimal `db:"rate" json:"rate"`
	CreatedAt     time.Time       `db:"created_at" json:"-"`
	UpdatedAt     time.Time       `db:"updated_at" json:"-"`
}

// AgentEarning is a denormalized record of commission computed for one
// completed filling request. Immutable once written; unique on
// (filling_request_id, agent_id) so re-running settlement never duplicates.
type AgentEarning struct {
	ID               int64           `db:"id" json:"id"`
	FillingRequestID int64           `db:"filling_request_id" json:"filling_request_id"`
	AgentID          int64           `db:"agent_id" json:"agent_id"`
	ComID            int64           `db:"com_id" json:"com_id"`
	ProductCodeID    int64           `db:"product_code_id" json:"product_code_id"`
	Quantity         decimal.Decimal `db:"quantity" json:"quantity"`
	Rate             decimal.Decimal `db:"rate" json:"rate"`
	CommissionAmount decimal.Decimal `db:"commission_amount" json:"commission_amount"`
	BatchID          string          `db:"batch_id" json:"batch_id"`
	CreatedAt        time.Time       `db:"created_at" json:"-"`
}

// AgentPayment is a payment made to an agent against earned commission
type AgentPayment struct {
	ID          int64           `db:"id" json:"id"`
	AgentID     int64           `db:"agent_id" json:"agent_id"`
	Amount      decimal.Decimal `db:"amount" json:"amount"`
	PaymentDate string          `db:"payment_date" json:"payment_date"`
	Remarks     string          `db:"remarks" json:"remarks"`
	CreatedBy   string          `db:"created_by" json:"created_by"`
	CreatedAt   time.Time       `db:"created_at" json:"-"`
}

// SettlementCandidate is a completed filling request with a configured
// non-zero commission rate that has not been settled for the agent yet
type SettlementCandidate struct {
	FillingRequestID int64           `db:"filling_request_id" json:"filling_request_id"`
	ComID            int64           `db:"com_id" json:"com_id"`
	ProductCodeID    int64           `db:"product_code_id" json:"product_code_id"`
	Quantity         decimal.Decimal `db:"quantity" json:"quantity"`
	Rate             decimal.Decimal `db:"rate" json:"rate"`
}

// EarningsSummary is the aggregate commission position of one agent
type EarningsSummary struct {
	AgentID     int64           `json:"agent_id"`
	TotalEarned decimal.Decimal `json:"total_earned"`
	TotalPaid   decimal.Decimal `json:"total_paid"`
	Due         decimal.Decimal `json:"due"`
}
