package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterConfig struct {
	Auth      *AuthHandler
	Events    *EventHandler
	Bookings  *BookingHandler
	Payments  *PaymentHandler
	Validator AccessTokenValidator
	Logger    *slog.Logger
}

// NewRouter assembles the API routes. Trailing slashes are stripped before
// matching, so /events/ and /events reach the same handler.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := defaultLogger(cfg.Logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.StripSlashes)
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(logger))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		newResponder(logger).writeJSON(req.Context(), w, http.StatusOK, messageResponse{Message: "ok"})
	})

	if cfg.Auth != nil {
		r.Post("/register", cfg.Auth.Register)
		r.Post("/login", cfg.Auth.Login)
		r.Post("/token/refresh", cfg.Auth.RefreshToken)
	}

	r.Group(func(protected chi.Router) {
		if cfg.Validator != nil {
			protected.Use(RequireAuth(cfg.Validator, logger))
		}

		if cfg.Auth != nil {
			protected.Post("/logout", cfg.Auth.Logout)
		}
		if cfg.Events != nil {
			protected.Get("/events", cfg.Events.List)
			protected.Post("/events", cfg.Events.Create)
		}
		if cfg.Bookings != nil {
			protected.Get("/bookings", cfg.Bookings.List)
			protected.Post("/bookings", cfg.Bookings.Create)
		}
		if cfg.Payments != nil {
			protected.Get("/payments", cfg.Payments.List)
			protected.Post("/payments", cfg.Payments.Create)
		}
	})

	return r
}
