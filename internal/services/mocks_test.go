package services

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
)

// newMockDB returns a database handle whose Begin/Commit/Rollback calls are
// scripted; the repositories under test are hand-written mocks, so no queries
// ever reach it.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type mockAuditRepo struct {
	entries    []*models.AuditLog
	failInsert bool
}

func (m *mockAuditRepo) Insert(entry *models.AuditLog) error {
	if m.failInsert {
		return errors.New("audit table unavailable")
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) List(recordType string, recordID int64, limit int) ([]*models.AuditLog, error) {
	var out []*models.AuditLog
	for _, e := range m.entries {
		if e.RecordType == recordType && e.RecordID == recordID {
			out = append(out, e)
		}
	}
	return out, nil
}
