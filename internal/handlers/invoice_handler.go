package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Amitkumar-56/mpcpl-backend/internal/auth"
	"github.com/Amitkumar-56/mpcpl-backend/internal/services"
)

type InvoiceHandler struct {
	paymentService *services.PaymentService
}

func NewInvoiceHandler(paymentService *services.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{
		paymentService: paymentService,
	}
}

func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	invoice, err := h.paymentService.GetInvoice(r.Context(), invoiceID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, invoice)
}

type invoicePaymentRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	TDSAmount   decimal.Decimal `json:"tds_amount"`
	PaymentDate string          `json:"payment_date" validate:"required"`
	Remarks     string          `json:"remarks"`
}

func (h *InvoiceHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	var request invoicePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := h.paymentService.RecordInvoicePayment(r.Context(), auth.ActorFrom(r.Context()), invoiceID, services.InvoicePaymentInput{
		Amount:      request.Amount,
		TDSAmount:   request.TDSAmount,
		PaymentDate: request.PaymentDate,
		Remarks:     request.Remarks,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, SuccessResponse{
		Message: "Payment recorded",
		Data:    payment,
	})
}

func (h *InvoiceHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	payments, err := h.paymentService.ListInvoicePayments(r.Context(), invoiceID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, payments)
}

type dncnRequest struct {
	Kind    string          `json:"kind" validate:"required,oneof=debit credit"`
	Amount  decimal.Decimal `json:"amount"`
	Remarks string          `json:"remarks"`
}

func (h *InvoiceHandler) ApplyDNCN(w http.ResponseWriter, r *http.Request) {
	invoiceID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid invoice id")
		return
	}

	var request dncnRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	invoice, err := h.paymentService.ApplyDNCN(r.Context(), auth.ActorFrom(r.Context()), invoiceID, services.DNCNInput{
		Kind:    request.Kind,
		Amount:  request.Amount,
		Remarks: request.Remarks,
	})
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Message: "Adjustment applied",
		Data:    invoice,
	})
}

func (h *InvoiceHandler) RemitTDS(w http.ResponseWriter, r *http.Request) {
	tdsEntryID, err := pathID(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid tds entry id")
		return
	}

	entry, err := h.paymentService.RemitTDS(r.Context(), auth.ActorFrom(r.Context()), tdsEntryID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Message: "TDS remitted",
		Data:    entry,
	})
}
