package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Amitkumar-56/mpcpl-backend/internal/auth"
	"github.com/Amitkumar-56/mpcpl-backend/internal/database"
	"github.com/Amitkumar-56/mpcpl-backend/internal/eligibility"
	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
	"github.com/Amitkumar-56/mpcpl-backend/internal/repositories"
)

type LedgerService struct {
	db          *sql.DB
	balanceRepo repositories.BalanceRepository
	fillingRepo repositories.FillingRepository
	audit       *AuditLogger
}

func NewLedgerService(
	db *sql.DB,
	balanceRepo repositories.BalanceRepository,
	fillingRepo repositories.FillingRepository,
	audit *AuditLogger,
) *LedgerService {
	return &LedgerService{
		db:          db,
		balanceRepo: balanceRepo,
		fillingRepo: fillingRepo,
		audit:       audit,
	}
}

type CreditLimitAdjustment struct {
	ComID          int64           `json:"com_id"`
	IncreaseAmount decimal.Decimal `json:"increase_amount"`
	DecreaseAmount decimal.Decimal `json:"decrease_amount"`
	Remarks        string          `json:"remarks"`
}

type BalanceSnapshot struct {
	Customer *models.Customer        `json:"customer"`
	Balance  *models.CustomerBalance `json:"balance"`
	Usage    *models.UnpaidUsage     `json:"usage"`
}

// AdjustCreditLimit increases or decreases a customer's credit ceiling.
// Increase and decrease are mutually exclusive per call. An increase on a
// customer without a balance row creates the row; a decrease on a missing row
// or beyond the current ceiling is rejected. The adjustment, the lock on the
// balance row and the filling_history append run in one transaction.
func (s *LedgerService) AdjustCreditLimit(ctx context.Context, actor auth.Actor, input CreditLimitAdjustment) (*models.CustomerBalance, error) {
	increase := input.IncreaseAmount.IsPositive()
	decrease := input.DecreaseAmount.IsPositive()
	if increase == decrease {
		return nil, ErrInvalidAdjustment
	}

	var before, after *models.CustomerBalance
	action := models.AuditActionUpdate

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		current, err := s.balanceRepo.GetByComIDForUpdate(tx, input.ComID)
		if err != nil && err != repositories.ErrBalanceNotFound {
			return err
		}

		if current == nil {
			if decrease {
				return repositories.ErrBalanceNotFound
			}

			created := &models.CustomerBalance{
				ComID:       input.ComID,
				CstLimit:    input.IncreaseAmount,
				AmtLimit:    input.IncreaseAmount,
				Balance:     decimal.Zero,
				HoldBalance: decimal.Zero,
				DayAmount:   decimal.Zero,
			}
			if err := s.balanceRepo.CreateBalance(tx, created); err != nil {
				return fmt.Errorf("failed to create balance record: %w", err)
			}

			action = models.AuditActionCreate
			after = created
			return s.balanceRepo.InsertFillingHistory(tx, &models.FillingHistory{
				ComID:     input.ComID,
				Action:    models.LimitActionIncrease,
				Amount:    input.IncreaseAmount,
				OldLimit:  decimal.Zero,
				NewLimit:  created.CstLimit,
				Remarks:   input.Remarks,
				CreatedBy: actor.Name,
			})
		}

		delta := input.IncreaseAmount
		historyAction := models.LimitActionIncrease
		if decrease {
			if input.DecreaseAmount.GreaterThan(current.CstLimit) {
				return ErrInsufficientCreditLimit
			}
			delta = input.DecreaseAmount.Neg()
			historyAction = models.LimitActionDecrease
		}

		if err := s.balanceRepo.ApplyLimitAdjustment(tx, input.ComID, delta); err != nil {
			return fmt.Errorf("failed to apply limit adjustment: %w", err)
		}

		updated := *current
		updated.CstLimit = current.CstLimit.Add(delta)
		updated.AmtLimit = current.AmtLimit.Add(delta)

		before = current
		after = &updated

		return s.balanceRepo.InsertFillingHistory(tx, &models.FillingHistory{
			ComID:     input.ComID,
			Action:    historyAction,
			Amount:    delta.Abs(),
			OldLimit:  current.CstLimit,
			NewLimit:  updated.CstLimit,
			Remarks:   input.Remarks,
			CreatedBy: actor.Name,
		})
	})
	if err != nil {
		return nil, err
	}

	s.audit.Record(actor, "customer_balance", input.ComID, action, input.Remarks, before, after)
	return after, nil
}

// CheckEligibility reports whether a customer may transact further, based on
// its client type, day limit and unpaid completed usage.
func (s *LedgerService) CheckEligibility(ctx context.Context, comID int64) (*eligibility.Result, error) {
	customer, err := s.balanceRepo.GetCustomerByID(comID)
	if err != nil {
		return nil, err
	}

	usage, err := s.fillingRepo.GetUnpaidUsage(comID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unpaid usage: %w", err)
	}

	availableLimit := decimal.Zero
	if balance, err := s.balanceRepo.GetByComID(comID); err == nil {
		availableLimit = balance.AmtLimit
	} else if err != repositories.ErrBalanceNotFound {
		return nil, err
	}

	result := eligibility.Evaluate(eligibility.Input{
		ClientType:      customer.ClientType,
		DayLimit:        customer.DayLimit,
		UnpaidDays:      usage.UnpaidDays,
		OldestUnpaidAge: usage.OldestUnpaidAge,
		CreditUsed:      usage.CreditUsed,
		AvailableLimit:  availableLimit,
	})
	return &result, nil
}

func (s *LedgerService) GetBalance(ctx context.Context, comID int64) (*BalanceSnapshot, error) {
	customer, err := s.balanceRepo.GetCustomerByID(comID)
	if err != nil {
		return nil, err
	}

	balance, err := s.balanceRepo.GetByComID(comID)
	if err != nil {
		return nil, err
	}

	usage, err := s.fillingRepo.GetUnpaidUsage(comID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unpaid usage: %w", err)
	}

	return &BalanceSnapshot{
		Customer: customer,
		Balance:  balance,
		Usage:    usage,
	}, nil
}
