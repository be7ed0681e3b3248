package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
	"github.com/mamatela/restaurant-review-back-end/internal/usecase"
)

// UserHandler serves account management.
type UserHandler struct {
	users  *usecase.UserUsecase
	logger *logger.Logger
}

func NewUserHandler(users *usecase.UserUsecase, log *logger.Logger) *UserHandler {
	return &UserHandler{users: users, logger: log.Named("UserHandler")}
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	user, err := h.users.GetUser(r.Context(), p, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	filter := domain.UserFilter{
		Role:   domain.Role(r.URL.Query().Get("role")),
		Search: r.URL.Query().Get("searchString"),
	}
	listed, err := h.users.ListUsers(r.Context(), p, filter, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listed)
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var req struct {
		Email     *string      `json:"email"`
		FirstName *string      `json:"firstName"`
		LastName  *string      `json:"lastName"`
		Role      *domain.Role `json:"role"`
		Password  *string      `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}

	user, err := h.users.UpdateUser(r.Context(), p, id, usecase.UpdateUserInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Password:  req.Password,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.users.DeleteUser(r.Context(), p, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
