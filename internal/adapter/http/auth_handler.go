package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
	"github.com/mamatela/restaurant-review-back-end/internal/usecase"
)

// AuthHandler serves registration, login and the password lifecycle.
type AuthHandler struct {
	auth   *usecase.AuthUsecase
	logger *logger.Logger
}

func NewAuthHandler(auth *usecase.AuthUsecase, log *logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: log.Named("AuthHandler")}
}

type authResponse struct {
	User   *domain.User       `json:"user"`
	Tokens *domain.AuthTokens `json:"tokens"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string      `json:"email"`
		Password  string      `json:"password"`
		FirstName string      `json:"firstName"`
		LastName  string      `json:"lastName"`
		Role      domain.Role `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}

	user, tokens, err := h.auth.Register(r.Context(), usecase.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Info("User registered via HTTP", zap.Int64("user_id", user.ID))
	writeJSON(w, http.StatusCreated, authResponse{User: user, Tokens: tokens})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}

	user, tokens, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, authResponse{User: user, Tokens: tokens})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, h.logger, fmt.Errorf("%w: refreshToken is required", domain.ErrInvalidInput))
		return
	}
	if err := h.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) RefreshTokens(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, h.logger, fmt.Errorf("%w: refreshToken is required", domain.ErrInvalidInput))
		return
	}
	tokens, err := h.auth.RefreshTokens(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, tokens)
}

func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, h.logger, fmt.Errorf("%w: email is required", domain.ErrInvalidInput))
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Password string `json:"password"`
	}
	token := r.URL.Query().Get("token")
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || token == "" || req.Password == "" {
		writeError(w, h.logger, fmt.Errorf("%w: token and password are required", domain.ErrInvalidInput))
		return
	}
	if err := h.auth.ResetPassword(r.Context(), token, req.Password); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
