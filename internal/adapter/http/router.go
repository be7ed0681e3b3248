package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mamatela/restaurant-review-back-end/internal/domain"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/logger"
	"github.com/mamatela/restaurant-review-back-end/internal/platform/metrics"
	"github.com/mamatela/restaurant-review-back-end/internal/usecase"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth          *AuthHandler
	Users         *UserHandler
	Restaurants   *RestaurantHandler
	Reviews       *ReviewHandler
	Notifications *NotificationHandler
}

// NewRouter wires middleware and routes. Auth endpoints are public; every
// other route requires a bearer token. Fine-grained authorization lives in
// the usecases.
func NewRouter(
	h Handlers,
	tokens *usecase.TokenUsecase,
	users domain.UserRepository,
	mm *metrics.MetricsManager,
	log *logger.Logger,
) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(log))
	if mm != nil {
		r.Use(Metrics(mm))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/auth/register", h.Auth.Register)
	r.Post("/api/auth/login", h.Auth.Login)
	r.Post("/api/auth/refresh-tokens", h.Auth.RefreshTokens)
	r.Post("/api/auth/forgot-password", h.Auth.ForgotPassword)
	r.Post("/api/auth/reset-password", h.Auth.ResetPassword)

	r.Group(func(authRouter chi.Router) {
		authRouter.Use(JWTAuth(tokens, users, log))

		authRouter.Post("/api/auth/logout", h.Auth.Logout)

		authRouter.Get("/api/users", h.Users.ListUsers)
		authRouter.Get("/api/users/{id}", h.Users.GetUser)
		authRouter.Patch("/api/users/{id}", h.Users.UpdateUser)
		authRouter.Delete("/api/users/{id}", h.Users.DeleteUser)

		authRouter.Post("/api/restaurants", h.Restaurants.Create)
		authRouter.Get("/api/restaurants", h.Restaurants.List)
		authRouter.Get("/api/restaurants/own", h.Restaurants.Own)
		authRouter.Get("/api/restaurants/{id}", h.Restaurants.Get)
		authRouter.Get("/api/restaurants/{id}/details", h.Restaurants.Details)
		authRouter.Patch("/api/restaurants/{id}", h.Restaurants.Update)
		authRouter.Post("/api/restaurants/{id}/picture", h.Restaurants.UploadPicture)
		authRouter.Delete("/api/restaurants/{id}", h.Restaurants.Delete)

		authRouter.Post("/api/reviews", h.Reviews.Create)
		authRouter.Get("/api/reviews", h.Reviews.List)
		authRouter.Get("/api/reviews/{id}", h.Reviews.Get)
		authRouter.Patch("/api/reviews/{id}", h.Reviews.Update)
		authRouter.Delete("/api/reviews/{id}", h.Reviews.Delete)
		authRouter.Post("/api/reviews/{id}/reply", h.Reviews.AddReply)
		authRouter.Patch("/api/reviews/{id}/reply", h.Reviews.EditReply)
		authRouter.Delete("/api/reviews/{id}/reply", h.Reviews.DeleteReply)

		authRouter.Get("/api/notifications", h.Notifications.List)
		authRouter.Post("/api/notifications/mark-seen", h.Notifications.MarkAllSeen)
	})

	return r
}
