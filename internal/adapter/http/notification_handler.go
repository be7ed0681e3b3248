package http

import (
	"net/http"

	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
	"github.com/mamatela/restaurant-review-back-end/internal/usecase"
)

// NotificationHandler serves the caller's notification feed.
type NotificationHandler struct {
	notifications *usecase.NotificationUsecase
	logger        *logger.Logger
}

func NewNotificationHandler(notifications *usecase.NotificationUsecase, log *logger.Logger) *NotificationHandler {
	return &NotificationHandler{notifications: notifications, logger: log.Named("NotificationHandler")}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	listed, err := h.notifications.ListNotifications(r.Context(), p, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listed)
}

func (h *NotificationHandler) MarkAllSeen(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	if err := h.notifications.MarkAllSeen(r.Context(), p); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
