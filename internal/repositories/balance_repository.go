package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
)

var (
	ErrBalanceNotFound  = errors.New("customer balance record not found")
	ErrCustomerNotFound = errors.New("customer not found")
)

type BalanceRepository interface {
	GetCustomerByID(id int64) (*models.Customer, error)
	GetByComID(comID int64) (*models.CustomerBalance, error)
	GetByComIDForUpdate(tx *sql.Tx, comID int64) (*models.CustomerBalance, error)
	CreateBalance(tx *sql.Tx, balance *models.CustomerBalance) error
	ApplyLimitAdjustment(tx *sql.Tx, comID int64, delta decimal.Decimal) error
	InsertFillingHistory(tx *sql.Tx, history *models.FillingHistory) error
}

type balanceRepository struct {
	db *sql.DB
}

func NewBalanceRepository(db *sql.DB) BalanceRepository {
	return &balanceRepository{db: db}
}

func (r *balanceRepository) GetCustomerByID(id int64) (*models.Customer, error) {
	c := &models.Customer{}
	query := `
		SELECT id, name, code, client_type, day_limit, agent_id, status,
		       created_at, updated_at
		FROM customers
		WHERE id = ?
	`
	err := r.db.QueryRow(query, id).Scan(
		&c.ID,
		&c.Name,
		&c.Code,
		&c.ClientType,
		&c.DayLimit,
		&c.AgentID,
		&c.Status,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrCustomerNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

const balanceColumns = `id, com_id, cst_limit, amtlimit, balance, hold_balance,
		       day_amount, limit_expiry, created_at, updated_at`

func scanBalance(row *sql.Row) (*models.CustomerBalance, error) {
	b := &models.CustomerBalance{}
	err := row.Scan(
		&b.ID,
		&b.ComID,
		&b.CstLimit,
		&b.AmtLimit,
		&b.Balance,
		&b.HoldBalance,
		&b.DayAmount,
		&b.LimitExpiry,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrBalanceNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (r *balanceRepository) GetByComID(comID int64) (*models.CustomerBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM customer_balances
		WHERE com_id = ?
	`
	return scanBalance(r.db.QueryRow(query, comID))
}

func (r *balanceRepository) GetByComIDForUpdate(tx *sql.Tx, comID int64) (*models.CustomerBalance, error) {
	query := `
		SELECT ` + balanceColumns + `
		FROM customer_balances
		WHERE com_id = ?
		FOR UPDATE
	`
	return scanBalance(tx.QueryRow(query, comID))
}

func (r *balanceRepository) CreateBalance(tx *sql.Tx, balance *models.CustomerBalance) error {
	query := `
		INSERT INTO customer_balances (
			com_id, cst_limit, amtlimit, balance, hold_balance, day_amount, limit_expiry
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		balance.ComID,
		balance.CstLimit,
		balance.AmtLimit,
		balance.Balance,
		balance.HoldBalance,
		balance.DayAmount,
		balance.LimitExpiry,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	balance.ID = id
	return nil
}

func (r *balanceRepository) ApplyLimitAdjustment(tx *sql.Tx, comID int64, delta decimal.Decimal) error {
	query := `
		UPDATE customer_balances
		SET cst_limit = cst_limit + ?,
		    amtlimit = amtlimit + ?,
		    updated_at = ?
		WHERE com_id = ?
	`
	result, err := tx.Exec(query, delta, delta, time.Now(), comID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrBalanceNotFound
	}
	return nil
}

func (r *balanceRepository) InsertFillingHistory(tx *sql.Tx, history *models.FillingHistory) error {
	query := `
		INSERT INTO filling_history (
			com_id, action, amount, old_limit, new_limit, remarks, created_by
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		history.ComID,
		history.Action,
		history.Amount,
		history.OldLimit,
		history.NewLimit,
		history.Remarks,
		history.CreatedBy,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	history.ID = id
	return nil
}
