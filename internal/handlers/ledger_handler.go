package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Amitkumar-56/mpcpl-backend/internal/auth"
	"github.com/Amitkumar-56/mpcpl-backend/internal/services"
)

type LedgerHandler struct {
	ledgerService *services.LedgerService
}

func NewLedgerHandler(ledgerService *services.LedgerService) *LedgerHandler {
	return &LedgerHandler{
		ledgerService: ledgerService,
	}
}

type creditLimitRequest struct {
	ComID          int64           `json:"com_id" validate:"required,gt=0"`
	IncreaseAmount decimal.Decimal `json:"increase_amount"`
	DecreaseAmount decimal.Decimal `json:"decrease_amount"`
	Remarks        string          `json:"remarks"`
}

func (h *LedgerHandler) AdjustCreditLimit(w http.ResponseWriter, r *http.Request) {
	var request creditLimitRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	balance, err := h.ledgerService.AdjustCreditLimit(r.Context(), auth.ActorFrom(r.Context()), services.CreditLimitAdjustment{
		ComID:          request.ComID,
		IncreaseAmount: request.IncreaseAmount,
		DecreaseAmount: request.DecreaseAmount,
		Remarks:        request.Remarks,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Message: "Credit limit adjusted successfully",
		Data:    balance,
	})
}

func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	comID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	snapshot, err := h.ledgerService.GetBalance(r.Context(), comID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, snapshot)
}

func (h *LedgerHandler) CheckEligibility(w http.ResponseWriter, r *http.Request) {
	comID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid customer id")
		return
	}

	result, err := h.ledgerService.CheckEligibility(r.Context(), comID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
