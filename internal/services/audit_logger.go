package services

import (
	"encoding/json"

	"github.com/sirupsen/logrus"

	"github.com/Amitkumar-56/mpcpl-backend/internal/auth"
	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
	"github.com/Amitkumar-56/mpcpl-backend/internal/repositories"
)

// AuditLogger writes best-effort audit entries after a primary mutation has
// committed. A failed audit write is logged and swallowed; it never fails or
// rolls back the mutation that triggered it.
type AuditLogger struct {
	auditRepo repositories.AuditRepository
}

func NewAuditLogger(auditRepo repositories.AuditRepository) *AuditLogger {
	return &AuditLogger{auditRepo: auditRepo}
}

func (l *AuditLogger) Record(actor auth.Actor, recordType string, recordID int64, action, remarks string, before, after interface{}) {
	entry := &models.AuditLog{
		RecordType: recordType,
		RecordID:   recordID,
		Action:     action,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Remarks:    remarks,
	}

	// a nil snapshot, typed or not, marshals to "null"; store no snapshot
	// at all rather than a JSON null
	if data, err := json.Marshal(before); err == nil && string(data) != "null" {
		entry.Before = data
	}
	if data, err := json.Marshal(after); err == nil && string(data) != "null" {
		entry.After = data
	}

	if err := l.auditRepo.Insert(entry); err != nil {
		logrus.WithFields(logrus.Fields{
			"record_type": recordType,
			"record_id":   recordID,
			"action":      action,
		}).WithError(err).Error("failed to write audit log entry")
	}
}

func (l *AuditLogger) List(recordType string, recordID int64, limit int) ([]*models.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return l.auditRepo.List(recordType, recordID, limit)
}
