package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/Amitkumar-56/mpcpl-backend/internal/auth"
	"github.com/Amitkumar-56/mpcpl-backend/internal/config"
	"github.com/Amitkumar-56/mpcpl-backend/internal/repositories"
)

type AuthHandler struct {
	userRepo repositories.UserRepository
	tokens   *auth.TokenManager
	cfg      *config.Config
}

func NewAuthHandler(userRepo repositories.UserRepository, tokens *auth.TokenManager, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		tokens:   tokens,
		cfg:      cfg,
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var request loginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if err := validate.Struct(&request); err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userRepo.GetByEmail(request.Email)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		respondWithError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.tokens.Generate(user.ID, user.Name, user.Role)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, "Failed to issue token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Auth.CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cfg.Auth.CookieSecure,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(time.Duration(h.cfg.Auth.TokenHours) * time.Hour),
	})

	respondWithJSON(w, http.StatusOK, SuccessResponse{
		Message: "Login successful",
		Data: map[string]interface{}{
			"user_id": user.ID,
			"name":    user.Name,
			"role":    user.Role,
		},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cfg.Auth.CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	respondWithJSON(w, http.StatusOK, SuccessResponse{Message: "Logged out"})
}
