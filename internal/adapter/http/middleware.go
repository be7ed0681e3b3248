package http

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/metrics"
	"github.com/mamatela/restaurant-review-back-end/internal/usecase"
)

type contextKey string

const (
	principalCtxKey = contextKey("principal")
	requestIDCtxKey = contextKey("request_id")
)

// PrincipalFromContext returns the authenticated identity set by JWTAuth.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalCtxKey).(domain.Principal)
	return p, ok
}

// RequestID tags every request with a uuid, echoed in the X-Request-ID header.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDCtxKey, id)))
	})
}

// RequestLogger logs each request with its status and duration.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			requestID, _ := r.Context().Value(requestIDCtxKey).(string)
			log.Info("HTTP request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", sw.status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", requestID),
			)
		})
	}
}

// Metrics records latency and error counts per chi route pattern.
func Metrics(mm *metrics.MetricsManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			mm.HTTPLatency.WithLabelValues(route).Observe(time.Since(start).Seconds())
			if sw.status >= 400 {
				mm.HTTPErrorsTotal.WithLabelValues(route, strconv.Itoa(sw.status)).Inc()
			}
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// JWTAuth verifies the bearer token and loads the account behind it so that
// downstream handlers see a Principal with a current role.
func JWTAuth(tokens *usecase.TokenUsecase, users domain.UserRepository, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				writeError(w, log, fmt.Errorf("%w: missing bearer token", domain.ErrUnauthorized))
				return
			}

			userID, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "), domain.TokenAccess)
			if err != nil {
				writeError(w, log, err)
				return
			}

			user, err := users.GetByID(r.Context(), userID)
			if err != nil {
				writeError(w, log, fmt.Errorf("%w: user not found", domain.ErrUnauthorized))
				return
			}

			p := domain.Principal{UserID: user.ID, Role: user.Role}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalCtxKey, p)))
		})
	}
}
