package repositories

import (
	"database/sql"

	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
)

type FillingRepository interface {
	GetUnpaidUsage(comID int64) (*models.UnpaidUsage, error)
}

type fillingRepository struct {
	db *sql.DB
}

func NewFillingRepository(db *sql.DB) FillingRepository {
	return &fillingRepository{db: db}
}

// GetUnpaidUsage aggregates the customer's completed-but-unpaid transactions:
// the number of distinct days carrying one, the age in days of the oldest one,
// and the summed amount.
func (r *fillingRepository) GetUnpaidUsage(comID int64) (*models.UnpaidUsage, error) {
	usage := &models.UnpaidUsage{}
	query := `
		SELECT COUNT(DISTINCT DATE(completed_date)),
		       COALESCE(DATEDIFF(CURDATE(), MIN(DATE(completed_date))), 0),
		       COALESCE(SUM(amount), 0)
		FROM filling_requests
		WHERE com_id = ?
		AND status = ?
		AND payment_status = ?
	`
	err := r.db.QueryRow(query, comID, models.FillingStatusCompleted, models.PaymentStatusUnpaid).Scan(
		&usage.UnpaidDays,
		&usage.OldestUnpaidAge,
		&usage.CreditUsed,
	)
	if err != nil {
		return nil, err
	}
	return usage, nil
}
