package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Amitkumar-56/mpcpl-backend/internal/auth"
	"github.com/Amitkumar-56/mpcpl-backend/internal/services"
)

type SettlementHandler struct {
	settlementService *services.SettlementService
	processingMutex   sync.Mutex
	activeRuns        map[string]bool
}

func NewSettlementHandler(settlementService *services.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		activeRuns:        make(map[string]bool),
	}
}

// acquireRun guards against the same settlement run being started twice
// concurrently from the UI.
func (h *SettlementHandler) acquireRun(key string) bool {
	h.processingMutex.Lock()
	defer h.processingMutex.Unlock()
	if h.activeRuns[key] {
		return false
	}
	h.activeRuns[key] = true
	return true
}

func (h *SettlementHandler) releaseRun(key string) {
	h.processingMutex.Lock()
	defer h.processingMutex.Unlock()
	delete(h.activeRuns, key)
}

func (h *SettlementHandler) SettleAgent(w http.ResponseWriter, r *http.Request) {
	agentID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid agent id")
		return
	}

	runKey := fmt.Sprintf("agent-%d", agentID)
	if !h.acquireRun(runKey) {
		respondWithError(w, http.StatusConflict, "Settlement for this agent is already in progress")
		return
	}
	defer h.releaseRun(runKey)

	result, err := h.settlementService.SettleAgent(r.Context(), agentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Message: "Settlement completed",
		Data:    result,
	})
}

func (h *SettlementHandler) SettleAll(w http.ResponseWriter, r *http.Request) {
	if !h.acquireRun("all") {
		respondWithError(w, http.StatusConflict, "A settlement run is already in progress")
		return
	}
	defer h.releaseRun("all")

	result, err := h.settlementService.SettleAll(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Message: "Settlement run completed",
		Data:    result,
	})
}

func (h *SettlementHandler) GetEarnings(w http.ResponseWriter, r *http.Request) {
	agentID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid agent id")
		return
	}

	summary, err := h.settlementService.GetEarningsSummary(r.Context(), agentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, summary)
}

type agentPaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate string          `json:"payment_date" validate:"required"`
	Remarks     string          `json:"remarks"`
}

func (h *SettlementHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	agentID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid agent id")
		return
	}

	var request agentPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := h.settlementService.RecordAgentPayment(r.Context(), auth.ActorFrom(r.Context()), agentID, services.AgentPaymentInput{
		Amount:      request.Amount,
		PaymentDate: request.PaymentDate,
		Remarks:     request.Remarks,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, SuccessResponse{
		Message: "Agent payment recorded",
		Data:    payment,
	})
}

type commissionRateRequest struct {
	ComID         int64           `json:"com_id" validate:"required,gt=0"`
	ProductCodeID int64           `json:"product_code_id" validate:"required,gt=0"`
	Rate          decimal.Decimal `json:"rate"`
}

func (h *SettlementHandler) UpsertCommissionRate(w http.ResponseWriter, r *http.Request) {
	agentID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid agent id")
		return
	}

	var request commissionRateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = h.settlementService.UpsertCommissionRate(r.Context(), auth.ActorFrom(r.Context()), agentID, services.CommissionRateInput{
		ComID:         request.ComID,
		ProductCodeID: request.ProductCodeID,
		Rate:          request.Rate,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Message: "Commission rate saved",
	})
}
