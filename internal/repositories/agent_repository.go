package repositories

import (
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
)

var ErrAgentNotFound = errors.New("agent not found")

type AgentRepository interface {
	GetAgentByID(id int64) (*models.Agent, error)
	GetAgentByIDForUpdate(tx *sql.Tx, id int64) (*models.Agent, error)
	GetActiveAgents() ([]*models.Agent, error)
	GetCommissionRate(agentID, comID, productCodeID int64) (*models.AgentCommission, error)
	UpsertCommissionRate(tx *sql.Tx, rate *models.AgentCommission) error
	GetUnsettledCompletedRequests(tx *sql.Tx, agentID int64) ([]*models.SettlementCandidate, error)
	InsertEarning(tx *sql.Tx, earning *models.AgentEarning) (bool, error)
	GetEarningsTotals(tx *sql.Tx, agentID int64) (earned, paid decimal.Decimal, err error)
	InsertPayment(tx *sql.Tx, payment *models.AgentPayment) error
}

type agentRepository struct {
	db *sql.DB
}

func NewAgentRepository(db *sql.DB) AgentRepository {
	return &agentRepository{db: db}
}

const agentColumns = `id, name, status, created_at, updated_at`

func scanAgent(row *sql.Row) (*models.Agent, error) {
	a := &models.Agent{}
	err := row.Scan(
		&a.ID,
		&a.Name,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrAgentNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *agentRepository) GetAgentByID(id int64) (*models.Agent, error) {
	query := `
		SELECT ` + agentColumns + `
		FROM agents
		WHERE id = ?
	`
	return scanAgent(r.db.QueryRow(query, id))
}

// GetAgentByIDForUpdate locks the agent row so concurrent payment writes
// for the same agent serialize on it.
func (r *agentRepository) GetAgentByIDForUpdate(tx *sql.Tx, id int64) (*models.Agent, error) {
	query := `
		SELECT ` + agentColumns + `
		FROM agents
		WHERE id = ?
		FOR UPDATE
	`
	return scanAgent(tx.QueryRow(query, id))
}

func (r *agentRepository) GetActiveAgents() ([]*models.Agent, error) {
	query := `
		SELECT id, name, status, created_at, updated_at
		FROM agents
		WHERE status = 1
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []*models.Agent
	for rows.Next() {
		a := &models.Agent{}
		err := rows.Scan(&a.ID, &a.Name, &a.Status, &a.CreatedAt, &a.UpdatedAt)
		if err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return agents, nil
}

func (r *agentRepository) GetCommissionRate(agentID, comID, productCodeID int64) (*models.AgentCommission, error) {
	c := &models.AgentCommission{}
	query := `
		SELECT id, agent_id, com_id, product_code_id, rate, created_at, updated_at
		FROM agent_commissions
		WHERE agent_id = ? AND com_id = ? AND product_code_id = ?
	`
	err := r.db.QueryRow(query, agentID, comID, productCodeID).Scan(
		&c.ID,
		&c.AgentID,
		&c.ComID,
		&c.ProductCodeID,
		&c.Rate,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *agentRepository) UpsertCommissionRate(tx *sql.Tx, rate *models.AgentCommission) error {
	query := `
		INSERT INTO agent_commissions (agent_id, com_id, product_code_id, rate)
		VALUES (?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE rate = VALUES(rate), updated_at = ?
	`
	_, err := tx.Exec(query,
		rate.AgentID,
		rate.ComID,
		rate.ProductCodeID,
		rate.Rate,
		time.Now(),
	)
	return err
}

// GetUnsettledCompletedRequests returns completed filling requests of the
// agent's customers that carry a configured non-zero rate and have no
// agent_earnings row yet. The product code of a request resolves as
// sub_product_id first, falling back to fl_id when sub_product_id is
// zero or NULL.
func (r *agentRepository) GetUnsettledCompletedRequests(tx *sql.Tx, agentID int64) ([]*models.SettlementCandidate, error) {
	query := `
		SELECT fr.id, fr.com_id,
		       COALESCE(NULLIF(fr.sub_product_id, 0), fr.fl_id),
		       fr.quantity, ac.rate
		FROM filling_requests fr
		INNER JOIN customers c
			ON c.id = fr.com_id AND c.agent_id = ?
		INNER JOIN agent_commissions ac
			ON ac.agent_id = c.agent_id
			AND ac.com_id = fr.com_id
			AND ac.product_code_id = COALESCE(NULLIF(fr.sub_product_id, 0), fr.fl_id)
		LEFT JOIN agent_earnings ae
			ON ae.filling_request_id = fr.id AND ae.agent_id = ?
		WHERE fr.status = ?
		AND ac.rate <> 0
		AND ae.id IS NULL
	`
	rows, err := tx.Query(query, agentID, agentID, models.FillingStatusCompleted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []*models.SettlementCandidate
	for rows.Next() {
		sc := &models.SettlementCandidate{}
		err := rows.Scan(
			&sc.FillingRequestID,
			&sc.ComID,
			&sc.ProductCodeID,
			&sc.Quantity,
			&sc.Rate,
		)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, sc)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return candidates, nil
}

// InsertEarning inserts one earning row, reporting whether a row was actually
// written. INSERT IGNORE plus the unique key on (filling_request_id, agent_id)
// makes settlement idempotent.
func (r *agentRepository) InsertEarning(tx *sql.Tx, earning *models.AgentEarning) (bool, error) {
	query := `
		INSERT IGNORE INTO agent_earnings (
			filling_request_id, agent_id, com_id, product_code_id,
			quantity, rate, commission_amount, batch_id
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		earning.FillingRequestID,
		earning.AgentID,
		earning.ComID,
		earning.ProductCodeID,
		earning.Quantity,
		earning.Rate,
		earning.CommissionAmount,
		earning.BatchID,
	)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if rowsAffected == 0 {
		return false, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return false, err
	}
	earning.ID = id
	return true, nil
}

// GetEarningsTotals reads both sums inside the caller's transaction so the
// earned and paid figures come from one consistent snapshot.
func (r *agentRepository) GetEarningsTotals(tx *sql.Tx, agentID int64) (decimal.Decimal, decimal.Decimal, error) {
	var earned, paid decimal.Decimal

	earnedQuery := `
		SELECT COALESCE(SUM(commission_amount), 0)
		FROM agent_earnings
		WHERE agent_id = ?
	`
	if err := tx.QueryRow(earnedQuery, agentID).Scan(&earned); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	paidQuery := `
		SELECT COALESCE(SUM(amount), 0)
		FROM agent_payments
		WHERE agent_id = ?
	`
	if err := tx.QueryRow(paidQuery, agentID).Scan(&paid); err != nil {
		return decimal.Zero, decimal.Zero, err
	}

	return earned, paid, nil
}

func (r *agentRepository) InsertPayment(tx *sql.Tx, payment *models.AgentPayment) error {
	query := `
		INSERT INTO agent_payments (
			agent_id, amount, payment_date, remarks, created_by
		) VALUES (?, ?, ?, ?, ?)
	`
	result, err := tx.Exec(query,
		payment.AgentID,
		payment.Amount,
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
