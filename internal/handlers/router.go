package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/Amitkumar-56/mpcpl-backend/internal/auth"
	"github.com/Amitkumar-56/mpcpl-backend/internal/config"
	"github.com/Amitkumar-56/mpcpl-backend/internal/repositories"
	"github.com/Amitkumar-56/mpcpl-backend/internal/services"
)

var validate = validator.New()

func SetupRouter(db *sql.DB, cfg *config.Config) *mux.Router {
	balanceRepo := repositories.NewBalanceRepository(db)
	fillingRepo := repositories.NewFillingRepository(db)
	agentRepo := repositories.NewAgentRepository(db)
	invoiceRepo := repositories.NewInvoiceRepository(db)
	auditRepo := repositories.NewAuditRepository(db)
	userRepo := repositories.NewUserRepository(db)

	auditLogger := services.NewAuditLogger(auditRepo)
	ledgerService := services.NewLedgerService(db, balanceRepo, fillingRepo, auditLogger)
	settlementService := services.NewSettlementService(db, agentRepo, auditLogger)
	paymentService := services.NewPaymentService(db, invoiceRepo, auditLogger)

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenHours)

	authHandler := NewAuthHandler(userRepo, tokens, cfg)
	ledgerHandler := NewLedgerHandler(ledgerService)
	settlementHandler := NewSettlementHandler(settlementService)
	invoiceHandler := NewInvoiceHandler(paymentService)
	auditHandler := NewAuditHandler(auditLogger)

	router := mux.NewRouter()
	router.HandleFunc("/health", healthCheckHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/auth/login", authHandler.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/v1/auth/logout", authHandler.Logout).Methods(http.MethodPost)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(loggingMiddleware)
	api.Use(jsonContentTypeMiddleware)
	api.Use(authMiddleware(tokens, cfg.Auth.CookieName))

	api.HandleFunc("/credit-limit", requireRoles(ledgerHandler.AdjustCreditLimit, "admin", "accounts")).Methods(http.MethodPost)
	api.HandleFunc("/customers/{id}/balance", ledgerHandler.GetBalance).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}/eligibility", ledgerHandler.CheckEligibility).Methods(http.MethodGet)

	api.HandleFunc("/agents/{id}/settlements", settlementHandler.SettleAgent).Methods(http.MethodPost)
	api.HandleFunc("/agents/{id}/earnings", settlementHandler.GetEarnings).Methods(http.MethodGet)
	api.HandleFunc("/agents/{id}/payments", settlementHandler.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/agents/{id}/commission-rates", requireRoles(settlementHandler.UpsertCommissionRate, "admin", "accounts")).Methods(http.MethodPut)
	api.HandleFunc("/settlements/run", settlementHandler.SettleAll).Methods(http.MethodPost)

	api.HandleFunc("/invoices/{id}", invoiceHandler.GetInvoice).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}/payments", invoiceHandler.RecordPayment).Methods(http.MethodPost)
	api.HandleFunc("/invoices/{id}/payments", invoiceHandler.ListPayments).Methods(http.MethodGet)
	api.HandleFunc("/invoices/{id}/dncn", invoiceHandler.ApplyDNCN).Methods(http.MethodPost)
	api.HandleFunc("/tds/{id}/remit", invoiceHandler.RemitTDS).Methods(http.MethodPost)

	api.HandleFunc("/audit-logs", auditHandler.List).Methods(http.MethodGet)

	return router
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		}).Info("request handled")
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// authMiddleware resolves the actor from the token cookie once and stashes it
// in the request context for the business layer.
func authMiddleware(tokens *auth.TokenManager, cookieName string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			actor, err := tokens.Verify(cookie.Value)
			if err != nil {
				respondWithError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

func requireRoles(next http.HandlerFunc, roles ...string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor := auth.ActorFrom(r.Context())
		for _, role := range roles {
			if actor.Role == role {
				next(w, r)
				return
			}
		}
		respondWithError(w, http.StatusForbidden, "Insufficient role for this operation")
	}
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"status": "healthy",
	}
	respondWithJSON(w, http.StatusOK, response)
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": "Error marshaling JSON response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}
