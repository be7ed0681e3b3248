package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
	"github.com/mamatela/restaurant-review-back-end/internal/usecase"
)

// maxPictureBytes caps restaurant picture uploads at 8 MiB.
const maxPictureBytes = 8 << 20

// RestaurantHandler serves restaurant management and the rated listing.
type RestaurantHandler struct {
	restaurants *usecase.RestaurantUsecase
	logger      *logger.Logger
}

func NewRestaurantHandler(restaurants *usecase.RestaurantUsecase, log *logger.Logger) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants, logger: log.Named("RestaurantHandler")}
}

func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}
	restaurant, err := h.restaurants.CreateRestaurant(r.Context(), p, req.Name, req.Address)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, restaurant)
}

func (h *RestaurantHandler) List(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	query := domain.RestaurantQuery{
		NameSearch: r.URL.Query().Get("searchString"),
		Page:       page,
	}
	if raw := r.URL.Query().Get("avgRating"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 32)
		if err != nil {
			writeError(w, h.logger, fmt.Errorf("%w: avgRating must be an integer", domain.ErrInvalidInput))
			return
		}
		query.AvgRating = int32(n)
	}

	listed, err := h.restaurants.ListRestaurants(r.Context(), p, query)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, listed)
}

func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	restaurant, err := h.restaurants.GetRestaurant(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

func (h *RestaurantHandler) Details(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	details, err := h.restaurants.GetRestaurantDetails(r.Context(), p, id, r.URL.Query().Get("searchString"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, details)
}

func (h *RestaurantHandler) Own(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	page, err := pageRequest(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	result, err := h.restaurants.OwnRestaurants(r.Context(), p, page)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	var req struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}
	restaurant, err := h.restaurants.UpdateRestaurant(r.Context(), p, id, usecase.UpdateRestaurantInput{
		Name:    req.Name,
		Address: req.Address,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

// UploadPicture accepts a multipart form with a "picture" file field.
func (h *RestaurantHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	if err := r.ParseMultipartForm(maxPictureBytes); err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: invalid multipart form", domain.ErrInvalidInput))
		return
	}
	file, header, err := r.FormFile("picture")
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("%w: picture file is required", domain.ErrInvalidInput))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxPictureBytes))
	if err != nil {
		writeError(w, h.logger, fmt.Errorf("failed to read picture: %w", err))
		return
	}

	restaurant, err := h.restaurants.UploadPicture(r.Context(), p, id, header.Filename, data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, restaurant)
}

func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFromContext(r.Context())
	id, err := idParam(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if err := h.restaurants.DeleteRestaurant(r.Context(), p, id); err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
