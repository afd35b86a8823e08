package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Amitkumar-56/mpcpl-backend/internal/auth"
	"github.com/Amitkumar-56/mpcpl-backend/internal/models"
	"github.com/Amitkumar-56/mpcpl-backend/internal/repositories"
)

type rateKey struct {
	agentID, comID, productCodeID int64
}

// mockAgentRepo mimics the settlement queries: candidates are completed
// requests whose resolved product code has a non-zero rate and no earning row
// yet, and earning inserts are unique on (filling_request_id, agent_id).
type mockAgentRepo struct {
	agents   map[int64]*models.Agent
	rates    map[rateKey]decimal.Decimal
	requests []*models.SettlementCandidate
	earnings map[string]*models.AgentEarning
	payments []*models.AgentPayment
	paid     decimal.Decimal
}

func newMockAgentRepo() *mockAgentRepo {
	return &mockAgentRepo{
		agents:   make(map[int64]*models.Agent),
		rates:    make(map[rateKey]decimal.Decimal),
		earnings: make(map[string]*models.AgentEarning),
		paid:     decimal.Zero,
	}
}

func earningKey(requestID, agentID int64) string {
	return fmt.Sprintf("%d-%d", requestID, agentID)
}

func (m *mockAgentRepo) GetAgentByID(id int64) (*models.Agent, error) {
	if a, ok := m.agents[id]; ok {
		return a, nil
	}
	return nil, repositories.ErrAgentNotFound
}

func (m *mockAgentRepo) GetAgentByIDForUpdate(tx *sql.Tx, id int64) (*models.Agent, error) {
	return m.GetAgentByID(id)
}

func (m *mockAgentRepo) GetActiveAgents() ([]*models.Agent, error) {
	var out []*models.Agent
	for _, a := range m.agents {
		if a.Status == 1 {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAgentRepo) GetCommissionRate(agentID, comID, productCodeID int64) (*models.AgentCommission, error) {
	rate, ok := m.rates[rateKey{agentID, comID, productCodeID}]
	if !ok {
		return nil, nil
	}
	return &models.AgentCommission{
		AgentID:       agentID,
		ComID:         comID,
		ProductCodeID: productCodeID,
		Rate:          rate,
	}, nil
}

func (m *mockAgentRepo) UpsertCommissionRate(tx *sql.Tx, rate *models.AgentCommission) error {
	m.rates[rateKey{rate.AgentID, rate.ComID, rate.ProductCodeID}] = rate.Rate
	return nil
}

func (m *mockAgentRepo) GetUnsettledCompletedRequests(tx *sql.Tx, agentID int64) ([]*models.SettlementCandidate, error) {
	var out []*models.SettlementCandidate
	for _, req := range m.requests {
		if _, settled := m.earnings[earningKey(req.FillingRequestID, agentID)]; settled {
			continue
		}
		rate, ok := m.rates[rateKey{agentID, req.ComID, req.ProductCodeID}]
		if !ok || rate.IsZero() {
			continue
		}
		out = append(out, &models.SettlementCandidate{
			FillingRequestID: req.FillingRequestID,
			ComID:            req.ComID,
			ProductCodeID:    req.ProductCodeID,
			Quantity:         req.Quantity,
			Rate:             rate,
		})
	}
	return out, nil
}

func (m *mockAgentRepo) InsertEarning(tx *sql.Tx, earning *models.AgentEarning) (bool, error) {
	key := earningKey(earning.FillingRequestID, earning.AgentID)
	if _, exists := m.earnings[key]; exists {
		return false, nil
	}
	copied := *earning
	copied.CreatedAt = time.Now()
	m.earnings[key] = &copied
	return true, nil
}

func (m *mockAgentRepo) GetEarningsTotals(tx *sql.Tx, agentID int64) (decimal.Decimal, decimal.Decimal, error) {
	earned := decimal.Zero
	for _, e := range m.earnings {
		if e.AgentID == agentID {
			earned = earned.Add(e.CommissionAmount)
		}
	}
	return earned, m.paid, nil
}

func (m *mockAgentRepo) InsertPayment(tx *sql.Tx, payment *models.AgentPayment) error {
	m.payments = append(m.payments, payment)
	m.paid = m.paid.Add(payment.Amount)
	return nil
}

func TestSettleAgentComputesCommission(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	agentRepo := newMockAgentRepo()
	agentRepo.agents[3] = &models.Agent{ID: 3, Name: "R.K. Traders", Status: 1}
	agentRepo.rates[rateKey{3, 42, 11}] = decimal.NewFromFloat(2.5)
	agentRepo.requests = append(agentRepo.requests, &models.SettlementCandidate{
		FillingRequestID: 100,
		ComID:            42,
		ProductCodeID:    11,
		Quantity:         decimal.NewFromInt(1000),
	})
	svc := NewSettlementService(db, agentRepo, NewAuditLogger(&mockAuditRepo{}))

	result, err := svc.SettleAgent(context.Background(), 3)
	if err != nil {
		t.Fatalf("SettleAgent() error = %v", err)
	}

	if result.SettledCount != 1 {
		t.Errorf("settled_count = %d, want 1", result.SettledCount)
	}
	want := decimal.NewFromInt(2500)
	if !result.TotalCommission.Equal(want) {
		t.Errorf("total_commission = %s, want 2500", result.TotalCommission)
	}

	earning := agentRepo.earnings[earningKey(100, 3)]
	if earning == nil {
		t.Fatal("no earning row written")
	}
	if !earning.CommissionAmount.Equal(want) {
		t.Errorf("commission_amount = %s, want 2500", earning.CommissionAmount)
	}
}

func TestSettleAgentIdempotent(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	agentRepo := newMockAgentRepo()
	agentRepo.agents[3] = &models.Agent{ID: 3, Status: 1}
	agentRepo.rates[rateKey{3, 42, 11}] = decimal.NewFromFloat(2.5)
	agentRepo.requests = append(agentRepo.requests, &models.SettlementCandidate{
		FillingRequestID: 100,
		ComID:            42,
		ProductCodeID:    11,
		Quantity:         decimal.NewFromInt(1000),
	})
	svc := NewSettlementService(db, agentRepo, NewAuditLogger(&mockAuditRepo{}))

	if _, err := svc.SettleAgent(context.Background(), 3); err != nil {
		t.Fatalf("first SettleAgent() error = %v", err)
	}
	second, err := svc.SettleAgent(context.Background(), 3)
	if err != nil {
		t.Fatalf("second SettleAgent() error = %v", err)
	}

	if second.SettledCount != 0 {
		t.Errorf("second run settled_count = %d, want 0", second.SettledCount)
	}
	if len(agentRepo.earnings) != 1 {
		t.Errorf("earning rows = %d, want 1", len(agentRepo.earnings))
	}
}

func TestSettleAgentRateEditDoesNotRewriteHistory(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	agentRepo := newMockAgentRepo()
	agentRepo.agents[3] = &models.Agent{ID: 3, Status: 1}
	agentRepo.rates[rateKey{3, 42, 11}] = decimal.NewFromFloat(2.5)
	agentRepo.requests = append(agentRepo.requests, &models.SettlementCandidate{
		FillingRequestID: 100,
		ComID:            42,
		ProductCodeID:    11,
		Quantity:         decimal.NewFromInt(1000),
	})
	svc := NewSettlementService(db, agentRepo, NewAuditLogger(&mockAuditRepo{}))

	if _, err := svc.SettleAgent(context.Background(), 3); err != nil {
		t.Fatalf("SettleAgent() error = %v", err)
	}

	err := svc.UpsertCommissionRate(context.Background(), auth.SystemActor(), 3, CommissionRateInput{
		ComID:         42,
		ProductCodeID: 11,
		Rate:          decimal.NewFromFloat(3.0),
	})
	if err != nil {
		t.Fatalf("UpsertCommissionRate() error = %v", err)
	}

	agentRepo.requests = append(agentRepo.requests, &models.SettlementCandidate{
		FillingRequestID: 101,
		ComID:            42,
		ProductCodeID:    11,
		Quantity:         decimal.NewFromInt(1000),
	})
	if _, err := svc.SettleAgent(context.Background(), 3); err != nil {
		t.Fatalf("SettleAgent() after rate edit error = %v", err)
	}

	old := agentRepo.earnings[earningKey(100, 3)]
	if !old.CommissionAmount.Equal(decimal.NewFromInt(2500)) {
		t.Errorf("historical earning rewritten: %s, want 2500", old.CommissionAmount)
	}
	fresh := agentRepo.earnings[earningKey(101, 3)]
	if fresh == nil || !fresh.CommissionAmount.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("new settlement did not use edited rate: %+v", fresh)
	}
}

func TestSettleAgentUnknownAgent(t *testing.T) {
	db, _ := newMockDB(t)
	svc := NewSettlementService(db, newMockAgentRepo(), NewAuditLogger(&mockAuditRepo{}))

	_, err := svc.SettleAgent(context.Background(), 99)
	if err != repositories.ErrAgentNotFound {
		t.Errorf("SettleAgent() error = %v, want ErrAgentNotFound", err)
	}
}

func TestGetEarningsSummaryDueNeverNegative(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	agentRepo := newMockAgentRepo()
	agentRepo.agents[3] = &models.Agent{ID: 3, Status: 1}
	agentRepo.earnings[earningKey(100, 3)] = &models.AgentEarning{
		AgentID:          3,
		CommissionAmount: decimal.NewFromInt(100),
	}
	agentRepo.paid = decimal.NewFromInt(150)
	svc := NewSettlementService(db, agentRepo, NewAuditLogger(&mockAuditRepo{}))

	summary, err := svc.GetEarningsSummary(context.Background(), 3)
	if err != nil {
		t.Fatalf("GetEarningsSummary() error = %v", err)
	}

	if !summary.Due.IsZero() {
		t.Errorf("due = %s, want 0 when paid exceeds earned", summary.Due)
	}
	if !summary.TotalEarned.Equal(decimal.NewFromInt(100)) {
		t.Errorf("total_earned = %s, want 100", summary.TotalEarned)
	}
	if !summary.TotalPaid.Equal(decimal.NewFromInt(150)) {
		t.Errorf("total_paid = %s, want 150", summary.TotalPaid)
	}
}

func TestRecordAgentPayment(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	agentRepo := newMockAgentRepo()
	agentRepo.agents[3] = &models.Agent{ID: 3, Status: 1}
	agentRepo.earnings[earningKey(100, 3)] = &models.AgentEarning{
		AgentID:          3,
		CommissionAmount: decimal.NewFromInt(2500),
	}
	auditRepo := &mockAuditRepo{}
	svc := NewSettlementService(db, agentRepo, NewAuditLogger(auditRepo))

	payment, err := svc.RecordAgentPayment(context.Background(), auth.SystemActor(), 3, AgentPaymentInput{
		Amount:      decimal.NewFromInt(1000),
		PaymentDate: "2024-04-01",
	})
	if err != nil {
		t.Fatalf("RecordAgentPayment() error = %v", err)
	}
	if !payment.Amount.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("payment amount = %s, want 1000", payment.Amount)
	}
	if len(auditRepo.entries) != 1 {
		t.Errorf("audit entries = %d, want 1", len(auditRepo.entries))
	}
}

func TestRecordAgentPaymentRejections(t *testing.T) {
	db, mock := newMockDB(t)

	agentRepo := newMockAgentRepo()
	agentRepo.agents[3] = &models.Agent{ID: 3, Status: 1}
	agentRepo.earnings[earningKey(100, 3)] = &models.AgentEarning{
		AgentID:          3,
		CommissionAmount: decimal.NewFromInt(500),
	}
	svc := NewSettlementService(db, agentRepo, NewAuditLogger(&mockAuditRepo{}))

	tests := []struct {
		name    string
		amount  decimal.Decimal
		opensTx bool
		wantErr error
	}{
		{"zero amount", decimal.Zero, false, ErrInvalidPaymentAmount},
		{"negative amount", decimal.NewFromInt(-10), false, ErrInvalidPaymentAmount},
		{"amount beyond due", decimal.NewFromInt(600), true, ErrPaymentExceedsDue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opensTx {
				mock.ExpectBegin()
				mock.ExpectRollback()
			}
			_, err := svc.RecordAgentPayment(context.Background(), auth.SystemActor(), 3, AgentPaymentInput{
				Amount:      tt.amount,
				PaymentDate: "2024-04-01",
			})
			if err != tt.wantErr {
				t.Errorf("RecordAgentPayment() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if len(agentRepo.payments) != 0 {
		t.Errorf("payments written on rejected requests")
	}
}

// serializedAgentRepo behaves like the row lock taken by
// GetAgentByIDForUpdate: a second payment blocks until the first one's
// insert has landed, so it reads the already-reduced due.
type serializedAgentRepo struct {
	*mockAgentRepo
	row sync.Mutex
}

func (m *serializedAgentRepo) GetAgentByIDForUpdate(tx *sql.Tx, id int64) (*models.Agent, error) {
	m.row.Lock()
	return m.mockAgentRepo.GetAgentByID(id)
}

func (m *serializedAgentRepo) InsertPayment(tx *sql.Tx, payment *models.AgentPayment) error {
	defer m.row.Unlock()
	return m.mockAgentRepo.InsertPayment(tx, payment)
}

func TestRecordAgentPaymentConcurrentDoesNotOverpay(t *testing.T) {
	db, mock := newMockDB(t)
	mock.MatchExpectationsInOrder(false)
	mock.ExpectBegin()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectRollback()

	inner := newMockAgentRepo()
	inner.agents[3] = &models.Agent{ID: 3, Status: 1}
	inner.earnings[earningKey(100, 3)] = &models.AgentEarning{
		AgentID:          3,
		CommissionAmount: decimal.NewFromInt(500),
	}
	agentRepo := &serializedAgentRepo{mockAgentRepo: inner}
	svc := NewSettlementService(db, agentRepo, NewAuditLogger(&mockAuditRepo{}))

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := svc.RecordAgentPayment(context.Background(), auth.SystemActor(), 3, AgentPaymentInput{
				Amount:      decimal.NewFromInt(400),
				PaymentDate: "2024-04-01",
			})
			errs <- err
		}()
	}

	var accepted, rejected int
	for i := 0; i < 2; i++ {
		switch err := <-errs; err {
		case nil:
			accepted++
		case ErrPaymentExceedsDue:
			rejected++
		default:
			t.Fatalf("RecordAgentPayment() error = %v", err)
		}
	}

	if accepted != 1 || rejected != 1 {
		t.Errorf("accepted = %d, rejected = %d, want exactly one of each", accepted, rejected)
	}
	if !inner.paid.Equal(decimal.NewFromInt(400)) {
		t.Errorf("total paid = %s, exceeds due 500", inner.paid)
	}
}

func TestUpsertCommissionRateNegative(t *testing.T) {
	db, _ := newMockDB(t)
	agentRepo := newMockAgentRepo()
	agentRepo.agents[3] = &models.Agent{ID: 3, Status: 1}
	svc := NewSettlementService(db, agentRepo, NewAuditLogger(&mockAuditRepo{}))

	err := svc.UpsertCommissionRate(context.Background(), auth.SystemActor(), 3, CommissionRateInput{
		ComID:         42,
		ProductCodeID: 11,
		Rate:          decimal.NewFromFloat(-0.5),
	})
	if err != ErrInvalidCommissionRate {
		t.Errorf("UpsertCommissionRate() error = %v, want ErrInvalidCommissionRate", err)
	}
}

func TestSettleAllRunsEveryActiveAgent(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()

	agentRepo := newMockAgentRepo()
	agentRepo.agents[1] = &models.Agent{ID: 1, Status: 1}
	agentRepo.agents[2] = &models.Agent{ID: 2, Status: 1}
	agentRepo.agents[3] = &models.Agent{ID: 3, Status: 0}
	svc := NewSettlementService(db, agentRepo, NewAuditLogger(&mockAuditRepo{}))

	run, err := svc.SettleAll(context.Background())
	if err != nil {
		t.Fatalf("SettleAll() error = %v", err)
	}
	if len(run.AgentResults) != 2 {
		t.Errorf("agent results = %d, want 2 (inactive agent skipped)", len(run.AgentResults))
	}
	if run.BatchID == "" {
		t.Errorf("run batch id empty")
	}
	for _, result := range run.AgentResults {
		if result.BatchID != run.BatchID {
			t.Errorf("agent result batch id %q != run batch id %q", result.BatchID, run.BatchID)
		}
	}
}
