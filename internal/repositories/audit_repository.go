package repositories

import (
	"database/sql"

	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
)

type AuditRepository interface {
	Insert(entry *models.AuditLog) error
	List(recordType string, recordID int64, limit int) ([]*models.AuditLog, error)
}

type auditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Insert runs outside any business transaction; audit rows are written
// best-effort after the primary mutation commits.
func (r *auditRepository) Insert(entry *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (
			record_type, record_id, action, actor_id, actor_name,
			remarks, before_snapshot, after_snapshot
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	result, err := r.db.Exec(query,
		entry.RecordType,
		entry.RecordID,
		entry.Action,
		entry.ActorID,
		entry.ActorName,
		entry.Remarks,
		entry.Before,
		entry.After,
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = id
	return nil
}

func (r *auditRepository) List(recordType string, recordID int64, limit int) ([]*models.AuditLog, error) {
	query := `
		SELECT id, record_type, record_id, action, actor_id, actor_name,
		       remarks, before_snapshot, after_snapshot, created_at
		FROM audit_logs
		WHERE record_type = ?
		AND record_id = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.Query(query, recordType, recordID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*models.AuditLog
	for rows.Next() {
		e := &models.AuditLog{}
		err := rows.Scan(
			&e.ID,
			&e.RecordType,
			&e.RecordID,
			&e.Action,
			&e.ActorID,
			&e.ActorName,
			&e.Remarks,
			&e.Before,
			&e.After,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}
