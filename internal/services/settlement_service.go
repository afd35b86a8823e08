package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/Amitkumar-56/mpcpl-backend/internal/auth"
	"github.com/Amitkumar-56/mpcpl-backend/internal/database"
	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
	"github.com/Amitkumar-56/mpcpl-backend/internal/repositories"
)

type SettlementService struct {
	db        *sql.DB
	agentRepo repositories.AgentRepository
	audit     *AuditLogger
}

func NewSettlementService(
	db *sql.DB,
	agentRepo repositories.AgentRepository,
	audit *AuditLogger,
) *SettlementService {
	return &SettlementService{
		db:        db,
		agentRepo: agentRepo,
		audit:     audit,
	}
}

type SettlementResult struct {
	AgentID         int64           `json:"agent_id"`
	BatchID         string          `json:"batch_id"`
	SettledCount    int             `json:"settled_count"`
	SkippedCount    int             `json:"skipped_count"`
	TotalCommission decimal.Decimal `json:"total_commission"`
}

type SettlementRunResult struct {
	BatchID      string              `json:"batch_id"`
	AgentResults []*SettlementResult `json:"agent_results"`
	FailedAgents []int64             `json:"failed_agents,omitempty"`
}

// SettleAgent computes commission for every completed filling request of the
// agent's customers that carries a configured non-zero rate and has not been
// settled yet. commission_amount = quantity * rate, written exactly once per
// (filling_request, agent); re-running is a no-op for already settled rows,
// and later rate edits never touch rows written here.
func (s *SettlementService) SettleAgent(ctx context.Context, agentID int64) (*SettlementResult, error) {
	agent, err := s.agentRepo.GetAgentByID(agentID)
	if err != nil {
		return nil, err
	}

	return s.settleAgent(ctx, agent.ID, uuid.NewString())
}

func (s *SettlementService) settleAgent(ctx context.Context, agentID int64, batchID string) (*SettlementResult, error) {
	result := &SettlementResult{
		AgentID:         agentID,
		BatchID:         batchID,
		TotalCommission: decimal.Zero,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		candidates, err := s.agentRepo.GetUnsettledCompletedRequests(tx, agentID)
		if err != nil {
			return fmt.Errorf("failed to load settlement candidates: %w", err)
		}

		for _, candidate := range candidates {
			commission := candidate.Quantity.Mul(candidate.Rate)
			inserted, err := s.agentRepo.InsertEarning(tx, &models.AgentEarning{
				FillingRequestID: candidate.FillingRequestID,
				AgentID:          agentID,
				ComID:            candidate.ComID,
				ProductCodeID:    candidate.ProductCodeID,
				Quantity:         candidate.Quantity,
				Rate:             candidate.Rate,
				CommissionAmount: commission,
				BatchID:          batchID,
			})
			if err != nil {
				return fmt.Errorf("failed to insert earning for request %d: %w", candidate.FillingRequestID, err)
			}
			if !inserted {
				result.SkippedCount++
				continue
			}
			result.SettledCount++
			result.TotalCommission = result.TotalCommission.Add(commission)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SettleAll runs settlement for every active agent, one transaction per
// agent. A failing agent is logged and skipped so the rest of the run
// completes.
func (s *SettlementService) SettleAll(ctx context.Context) (*SettlementRunResult, error) {
	agents, err := s.agentRepo.GetActiveAgents()
	if err != nil {
		return nil, fmt.Errorf("failed to load active agents: %w", err)
	}

	run := &SettlementRunResult{BatchID: uuid.NewString()}
	for _, agent := range agents {
		result, err := s.settleAgent(ctx, agent.ID, run.BatchID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"agent_id": agent.ID,
				"batch_id": run.BatchID,
			}).WithError(err).Error("settlement failed for agent")
			run.FailedAgents = append(run.FailedAgents, agent.ID)
			continue
		}
		run.AgentResults = append(run.AgentResults, result)
	}
	return run, nil
}

// GetEarningsSummary returns the agent's aggregate commission position.
// Due is clamped at zero so overpayment never reports a negative figure.
func (s *SettlementService) GetEarningsSummary(ctx context.Context, agentID int64) (*models.EarningsSummary, error) {
	if _, err := s.agentRepo.GetAgentByID(agentID); err != nil {
		return nil, err
	}

	var earned, paid decimal.Decimal
	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var err error
		earned, paid, err = s.agentRepo.GetEarningsTotals(tx, agentID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load earnings totals: %w", err)
	}

	return &models.EarningsSummary{
		AgentID:     agentID,
		TotalEarned: earned,
		TotalPaid:   paid,
		Due:         dueAmount(earned, paid),
	}, nil
}

func dueAmount(earned, paid decimal.Decimal) decimal.Decimal {
	due := earned.Sub(paid)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

type AgentPaymentInput struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date"`
	Remarks     string          `json:"remarks"`
}

// RecordAgentPayment writes a payment against the agent's outstanding due.
// The due check and the insert share one transaction behind the agent row
// lock, so two concurrent payments cannot both read the same due and
// overpay.
func (s *SettlementService) RecordAgentPayment(ctx context.Context, actor auth.Actor, agentID int64, input AgentPaymentInput) (*models.AgentPayment, error) {
	if !input.Amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}

	payment := &models.AgentPayment{
		AgentID:     agentID,
		Amount:      input.Amount,
		PaymentDate: input.PaymentDate,
		Remarks:     input.Remarks,
		CreatedBy:   actor.Name,
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := s.agentRepo.GetAgentByIDForUpdate(tx, agentID); err != nil {
			return err
		}

		earned, paid, err := s.agentRepo.GetEarningsTotals(tx, agentID)
		if err != nil {
			return fmt.Errorf("failed to load earnings totals: %w", err)
		}
		if input.Amount.GreaterThan(dueAmount(earned, paid)) {
			return ErrPaymentExceedsDue
		}

		return s.agentRepo.InsertPayment(tx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, "agent_payment", payment.ID, models.AuditActionCreate, input.Remarks, nil, payment)
	return payment, nil
}

type CommissionRateInput struct {
	ComID         int64           `json:"com_id"`
	ProductCodeID int64           `json:"product_code_id"`
	Rate          decimal.Decimal `json:"rate"`
}

// UpsertCommissionRate replaces the configured rate going forward. Earnings
// already written keep the rate they were settled at.
func (s *SettlementService) UpsertCommissionRate(ctx context.Context, actor auth.Actor, agentID int64, input CommissionRateInput) error {
	if input.Rate.IsNegative() {
		return ErrInvalidCommissionRate
	}
	if _, err := s.agentRepo.GetAgentByID(agentID); err != nil {
		return err
	}

	before, err := s.agentRepo.GetCommissionRate(agentID, input.ComID, input.ProductCodeID)
	if err != nil {
		return err
	}

	rate := &models.AgentCommission{
		AgentID:       agentID,
		ComID:         input.ComID,
		ProductCodeID: input.ProductCodeID,
		Rate:          input.Rate,
	}
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.agentRepo.UpsertCommissionRate(tx, rate)
	})
	if err != nil {
		return err
	}

	action := models.AuditActionCreate
	if before != nil {
		action = models.AuditActionUpdate
	}
	s.audit.Record(actor, "agent_commission", agentID, action, "commission rate updated", before, rate)
	return nil
}
