package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/dinnerroulette/internal/auth"
	"github.com/abrezinsky/dinnerroulette/internal/config"
	"github.com/abrezinsky/dinnerroulette/internal/handlers"
	"github.com/abrezinsky/dinnerroulette/internal/logger"
	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/repository"
	"github.com/abrezinsky/dinnerroulette/internal/services"
	"github.com/abrezinsky/dinnerroulette/internal/store"
	"github.com/abrezinsky/dinnerroulette/internal/websocket"
	"github.com/abrezinsky/dinnerroulette/pkg/places"
)

const shutdownTimeout = 10 * time.Second

// App holds all application dependencies
type App struct {
	log      logger.Logger
	cfg      *config.Config
	handlers *handlers.Handlers
	repo     *repository.Repository
	backup   *services.BackupService
	baseURL  string
	stopHub  context.CancelFunc
	closed   sync.Once
}

// openStore connects the configured key-value backend
func openStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		return store.NewSQLite(cfg.SQLitePath, cfg.OpTimeout)
	case config.BackendRedis:
		return store.NewRedis(ctx, cfg.RedisURL, cfg.OpTimeout)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// New creates and initializes a new application instance
func New(cfg *config.Config, log logger.Logger) (*App, error) {
	defaultDistance, ok := models.ParseDistance(cfg.Distances.Default)
	if !ok {
		return nil, fmt.Errorf("invalid default distance %q", cfg.Distances.Default)
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelConnect()
	kv, err := openStore(connectCtx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}
	repo := repository.New(kv)

	// Initialize services
	categoryService := services.NewCategoryService(log, repo, cfg.Categories.Defaults)
	restaurantService := services.NewRestaurantService(log, repo, categoryService, defaultDistance)
	historyService := services.NewHistoryService(log, repo, cfg.History.Retention())
	spinLimitService := services.NewSpinLimitService(log, repo, cfg.SpinLimit.Timeout)
	selectionService := services.NewSelectionService(log, repo, historyService, spinLimitService, services.SelectionOptions{
		Cooldown: cfg.Selection.Cooldown,
		EatAtHome: services.EatAtHomeOptions{
			Enabled:        cfg.EatAtHome.Enabled,
			Name:           cfg.EatAtHome.Name,
			Weight:         cfg.EatAtHome.Weight,
			CooldownExempt: cfg.EatAtHome.CooldownExempt,
		},
		EnforceSpinLimit: cfg.SpinLimit.Enforce,
	})
	backupService := services.NewBackupService(log, repo, categoryService, services.BackupOptions{
		Dir:             cfg.Backup.Dir,
		Auto:            cfg.Backup.Auto,
		Timeout:         cfg.Store.OpTimeout * 5,
		DefaultDistance: defaultDistance,
	})

	// Initialize WebSocket hub; it runs until Close
	hubCtx, stopHub := context.WithCancel(context.Background())
	hub := websocket.New(log, historyService)
	hub.Start(hubCtx)
	selectionService.SetBroadcaster(hub)
	restaurantService.AddListener(services.NewBroadcastListener(hub))
	if cfg.Backup.Auto {
		restaurantService.AddListener(backupService)
	}

	var placesClient places.Client
	if cfg.Places.APIKey != "" {
		placesClient = places.NewHTTPClient(places.Config{
			APIKey:            cfg.Places.APIKey,
			Location:          cfg.Places.Location,
			RadiusMeters:      cfg.Places.RadiusMeters,
			RequestsPerSecond: cfg.Places.RequestsPerSecond,
		}, log)
	} else {
		log.Info("Place lookup disabled, no API key configured")
	}

	baseURL := defaultBaseURL(cfg.HTTP.BaseURL, cfg.HTTP.Port, realNetworkProvider{})

	h := handlers.New(handlers.Services{
		Restaurants: restaurantService,
		Categories:  categoryService,
		Selection:   selectionService,
		History:     historyService,
		SpinLimit:   spinLimitService,
		Backup:      backupService,
	}, placesClient, auth.New(cfg.HTTP.CookieSecure), hub, repo, log, handlers.Options{
		BaseURL:           baseURL,
		CORSOrigins:       cfg.HTTP.CORSOrigins,
		SpinRatePerMinute: cfg.HTTP.SpinRatePerMinute,
	})

	return &App{
		log:      log,
		cfg:      cfg,
		handlers: h,
		repo:     repo,
		backup:   backupService,
		baseURL:  baseURL,
		stopHub:  stopHub,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// BaseURL is the address phones on the LAN should use
func (a *App) BaseURL() string {
	return a.baseURL
}

// Backup writes a snapshot on demand
func (a *App) Backup(ctx context.Context) (string, error) {
	return a.backup.Backup(ctx)
}

// Close performs graceful shutdown of app resources
func (a *App) Close() {
	a.closed.Do(func() {
		a.stopHub()
		a.backup.Wait()
		if err := a.repo.Close(); err != nil {
			a.log.Warn("Failed to close store", "error", err)
		}
	})
}

// Run serves HTTP until ctx is cancelled, then drains in-flight requests
func (a *App) Run(ctx context.Context) error {
	addr := a.cfg.HTTP.Addr()
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server starting", "addr", addr, "url", a.baseURL)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.log.Info("Server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// defaultBaseURL keeps a configured base URL unless it points at localhost,
// which is useless in a QR code scanned by a phone
func defaultBaseURL(configured, port string, provider networkProvider) string {
	if configured != "" && !strings.Contains(configured, "localhost") {
		return configured
	}
	return fmt.Sprintf("http://%s", net.JoinHostPort(getPreferredIP(provider), port))
}

// networkInterface wraps net.Interface for testing
type networkInterface interface {
	Flags() net.Flags
	Addrs() ([]net.Addr, error)
}

// realInterface wraps a real net.Interface
type realInterface struct {
	iface net.Interface
}

func (r realInterface) Flags() net.Flags {
	return r.iface.Flags
}

func (r realInterface) Addrs() ([]net.Addr, error) {
	return r.iface.Addrs()
}

// networkProvider is an interface for getting network interfaces (for testing)
type networkProvider interface {
	Interfaces() ([]networkInterface, error)
}

// realNetworkProvider implements networkProvider using actual net package
type realNetworkProvider struct{}

func (realNetworkProvider) Interfaces() ([]networkInterface, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	result := make([]networkInterface, len(ifaces))
	for i, iface := range ifaces {
		result[i] = realInterface{iface: iface}
	}
	return result, nil
}

// getPreferredIP returns the best IP address for LAN access.
// Prefers private network addresses (192.168.x.x, 10.x.x.x, 172.16-31.x.x).
// Falls back to localhost if no suitable address is found.
func getPreferredIP(provider networkProvider) string {
	ifaces, err := provider.Interfaces()
	if err != nil {
		return "localhost"
	}

	var candidates []net.IP

	for _, iface := range ifaces {
		// Skip down, loopback, and point-to-point interfaces
		flags := iface.Flags()
		if flags&net.FlagUp == 0 || flags&net.FlagLoopback != 0 {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}

		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}

			// Only consider IPv4 addresses
			if ip == nil || ip.To4() == nil {
				continue
			}

			// Skip loopback
			if ip.IsLoopback() {
				continue
			}

			candidates = append(candidates, ip)
		}
	}

	// Prefer private network addresses
	for _, ip := range candidates {
		ipStr := ip.String()
		if strings.HasPrefix(ipStr, "192.168.") ||
			strings.HasPrefix(ipStr, "10.") ||
			isPrivate172(ip) {
			return ipStr
		}
	}

	// Fall back to any non-loopback if no private address found
	if len(candidates) > 0 {
		return candidates[0].String()
	}

	return "localhost"
}

// isPrivate172 checks if IP is in 172.16.0.0/12 range
func isPrivate172(ip net.IP) bool {
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 172 && ip4[1] >= 16 && ip4[1] <= 31
	}
	return false
}
