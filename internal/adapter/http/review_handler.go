package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
	"github.com/mamatela/restaurant-review-back-end/internal/usecase"
)

// ReviewHandler serves review writing and the owner reply flow.
type ReviewHandler struct {
	reviews *usecase.ReviewUsecase
	logger  *logger.Logger
}

func NewReviewHandler(reviews *usecase.ReviewUsecase, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{reviews: reviews, logger: log.Named("ReviewHandler")}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		RestaurantID int64      `json:"restaurant"`
		Rating       int32      `json:"rating"`
		Comment      string     `json:"comment"`
		Date         *time.Time `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}

	var date time.Time
	if req.Date != nil {
		date = *req.Date
	}
	review, err := h.reviews.CreateReview(r.Context(), p, req.RestaurantID, req.Rating, req.Comment, date)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}

func (h *ReviewHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	review, err := h.reviews.GetReview(r.Context(), p, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	filter := domain.ReviewFilter{Search: r.URL.Query().Get("searchString")}
	if raw := r.URL.Query().Get("restaurant"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, h.logger, fmt.Errorf("%w: restaurant must be an integer id", domain.ErrInvalidInput))
			return
		}
		filter.RestaurantID = id
	}

	listed, err := h.reviews.ListReviews(r.Context(), p, filter, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listed)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req struct {
		RestaurantID *int64     `json:"restaurant"`
		Rating       *int32     `json:"rating"`
		Comment      *string    `json:"comment"`
		Date         *time.Time `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}
	review, err := h.reviews.UpdateReview(r.Context(), p, id, usecase.UpdateReviewInput{
		RestaurantID: req.RestaurantID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		Date:         req.Date,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.reviews.DeleteReview(r.Context(), p, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ReviewHandler) AddReply(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r, h.reviews.AddReply)
}

func (h *ReviewHandler) EditReply(w http.ResponseWriter, r *http.Request) {
	h.reply(w, r, h.reviews.EditReply)
}

func (h *ReviewHandler) reply(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, p domain.Principal, id int64, reply string) (*domain.Review, error)) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}
	review, err := fn(r.Context(), p, id, req.Reply)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, review)
}

func (h *ReviewHandler) DeleteReply(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.reviews.DeleteReply(r.Context(), p, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
