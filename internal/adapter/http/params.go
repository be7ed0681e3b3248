package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
)

// idParam parses the {id} path parameter.
func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", domain.ErrInvalidInput)
	}
	return id, nil
}

// pageRequest parses pageNumber, pageSize and sort query parameters. Sort may
// appear multiple times or as a space-separated list; '-' prefixes descending
// fields. Absent values fall back to the defaults downstream.
func pageRequest(r *http.Request) (domain.PageRequest, error) {
	q := r.URL.Query()
	var page domain.PageRequest

	if raw := q.Get("pageNumber"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return page, fmt.Errorf("%w: pageNumber must be a positive integer", domain.ErrInvalidInput)
		}
		page.Page = n
	}
	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 {
			return page, fmt.Errorf("%w: pageSize must be a positive integer", domain.ErrInvalidInput)
		}
		page.Limit = n
	}
	if sorts := q["sort"]; len(sorts) > 0 {
		spec, err := domain.ParseSort(sorts)
		if err != nil {
			return page, err
		}
		page.Sort = spec
	}
	return page, nil
}
