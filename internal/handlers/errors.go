package handlers

import (
	"errors"
	"net/http"

	"github.com/Amitkumar-56/mpcpl-backend/internal/repositories"
	"github.com/Amitkumar-56/mpcpl-backend/internal/services"
)

// respondWithServiceError translates service and repository errors into the
// JSON error envelope with the matching status code.
func respondWithServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repositories.ErrBalanceNotFound),
		errors.Is(err, repositories.ErrCustomerNotFound),
		errors.Is(err, repositories.ErrAgentNotFound),
		errors.Is(err, repositories.ErrInvoiceNotFound),
		errors.Is(err, repositories.ErrTDSEntryNotFound):
		respondWithError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidAdjustment),
		errors.Is(err, services.ErrInvalidPaymentAmount),
		errors.Is(err, services.ErrInvalidCommissionRate):
		respondWithError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrInsufficientCreditLimit),
		errors.Is(err, services.ErrPaymentExceedsDue),
		errors.Is(err, services.ErrPaymentExceedsPayable),
		errors.Is(err, services.ErrCreditExceedsPayable):
		respondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, services.ErrTDSAlreadyRemitted):
		respondWithError(w, http.StatusConflict, err.Error())
	default:
		respondWithError(w, http.StatusInternalServerError, err.Error())
	}
}
