package handlers

import (
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/abrezinsky/dinnerroulette/internal/auth"
	"github.com/abrezinsky/dinnerroulette/internal/metrics"
)

// conditionalHTTPLogger only logs HTTP requests when HTTP logging is enabled
func (h *Handlers) conditionalHTTPLogger(next http.Handler) http.Handler {
	logger := middleware.Logger(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.Log != nil && h.Log.IsHTTPLoggingEnabled() {
			logger.ServeHTTP(w, r)
		} else {
			next.ServeHTTP(w, r)
		}
	})
}

// spinRateLimit throttles the spin endpoint per registered user, falling
// back to the client IP.
func (h *Handlers) spinRateLimit() func(http.Handler) http.Handler {
	if h.opts.SpinRatePerMinute <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		h.opts.SpinRatePerMinute,
		time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if name := auth.UserFromContext(r.Context()); name != "" {
				return "user:" + name, nil
			}
			return httprate.KeyByIP(r)
		}),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			respondError(w, TooManyRequests("Too many spins. Slow down a little.", 0))
		}),
	)
}

// Router returns a configured chi router with all routes
func (h *Handlers) Router() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.conditionalHTTPLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RedirectSlashes)

	// Cross-origin access is off unless origins are configured. The
	// identity cookie is only shared with explicitly named origins.
	if origins := h.opts.CORSOrigins; len(origins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   origins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type"},
			AllowCredentials: !slices.Contains(origins, "*"),
			MaxAge:           300,
		}))
	}

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", metrics.Handler())
	if h.Hub != nil {
		r.Get("/ws", h.Hub.ServeWs)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))

		// Public
		r.Get("/user/check", h.handleCheckUser)
		r.Post("/user/register", h.handleRegisterUser)
		r.Post("/user/logout", h.handleLogout)
		r.Get("/user/{username}/stats", h.handleUserStats)
		r.Get("/restaurants", h.handleListRestaurants)
		r.Get("/randomize/stats", h.handlePoolStats)
		r.Get("/history", h.handleListHistory)
		r.Get("/categories", h.handleListCategories)
		r.Get("/distances", h.handleListDistances)
		r.Get("/share/qr", h.handleShareQR)

		// Registered users
		r.Group(func(r chi.Router) {
			r.Use(h.Auth.RequireUser)

			r.Get("/user/spin-status", h.handleSpinStatus)

			r.Post("/restaurants", h.handleCreateRestaurant)
			r.Put("/restaurants/{id}", h.handleUpdateRestaurant)
			r.Delete("/restaurants/{id}", h.handleDeleteRestaurant)

			r.With(h.spinRateLimit()).Post("/randomize", h.handleRandomize)
			r.Post("/history/{id}/went", h.handleMarkWent)

			r.Post("/categories", h.handleCreateCategory)

			r.Post("/backup", h.handleBackup)
			r.Post("/restore", h.handleRestore)

			r.Get("/places/search", h.handleSearchPlaces)
			r.Get("/places/{id}", h.handlePlaceDetails)
		})
	})

	return r
}
