package handlers

import (
	"context"
	"net/http"

	"github.com/abrezinsky/dinnerroulette/internal/auth"
	"github.com/abrezinsky/dinnerroulette/internal/services"
	"github.com/abrezinsky/dinnerroulette/pkg/places"
)

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	IsHTTPLoggingEnabled() bool
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// LiveFeed serves the websocket endpoint
type LiveFeed interface {
	ServeWs(w http.ResponseWriter, r *http.Request)
}

// Options holds the HTTP-only settings
type Options struct {
	BaseURL           string
	CORSOrigins       []string
	SpinRatePerMinute int
}

// Services groups the service layer the handlers call into
type Services struct {
	Restaurants services.RestaurantServicer
	Categories  services.CategoryServicer
	Selection   services.SelectionServicer
	History     services.HistoryServicer
	SpinLimit   services.SpinLimitServicer
	Backup      services.BackupServicer
}

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Restaurants services.RestaurantServicer
	Categories  services.CategoryServicer
	Selection   services.SelectionServicer
	History     services.HistoryServicer
	SpinLimit   services.SpinLimitServicer
	Backup      services.BackupServicer
	Places      places.Client
	Auth        *auth.Auth
	Hub         LiveFeed
	Store       Pinger
	Log         HTTPLogger
	opts        Options
}

// New creates a new Handlers instance with all dependencies
func New(
	svc Services,
	placesClient places.Client,
	identity *auth.Auth,
	hub LiveFeed,
	store Pinger,
	log HTTPLogger,
	opts Options,
) *Handlers {
	if placesClient == nil {
		placesClient = places.NewMockClient(places.Disabled())
	}
	return &Handlers{
		Restaurants: svc.Restaurants,
		Categories:  svc.Categories,
		Selection:   svc.Selection,
		History:     svc.History,
		SpinLimit:   svc.SpinLimit,
		Backup:      svc.Backup,
		Places:      placesClient,
		Auth:        identity,
		Hub:         hub,
		Store:       store,
		Log:         log,
		opts:        opts,
	}
}

// NoopHTTPLogger is a test logger that always returns false for HTTP logging
type NoopHTTPLogger struct{}

func (NoopHTTPLogger) IsHTTPLoggingEnabled() bool { return false }

// user returns the name RequireUser put on the request
func (h *Handlers) user(r *http.Request) string {
	return auth.UserFromContext(r.Context())
}
