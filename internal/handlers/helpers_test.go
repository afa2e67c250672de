package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/abrezinsky/dinnerroulette/internal/auth"
	"github.com/abrezinsky/dinnerroulette/internal/handlers"
	"github.com/abrezinsky/dinnerroulette/internal/logger"
	"github.com/abrezinsky/dinnerroulette/internal/models"
	"github.com/abrezinsky/dinnerroulette/internal/repository"
	"github.com/abrezinsky/dinnerroulette/internal/services"
	"github.com/abrezinsky/dinnerroulette/internal/testutil"
	"github.com/abrezinsky/dinnerroulette/pkg/places"
)

// testServer wires real services over an in-memory store behind the router
type testServer struct {
	router    chi.Router
	auth      *auth.Auth
	selection *services.SelectionService
	backupDir string
}

type serverOptions struct {
	repo      repository.FullRepository
	selection *services.SelectionOptions
	places    places.Client
	opts      handlers.Options
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, serverOptions{})
}

func newTestServerWith(t *testing.T, so serverOptions) *testServer {
	t.Helper()
	log := logger.Discard()
	repo := so.repo
	if repo == nil {
		repo = testutil.NewTestRepository(t)
	}
	selOpts := services.SelectionOptions{
		Cooldown: 15 * time.Minute,
		EatAtHome: services.EatAtHomeOptions{
			Enabled:        true,
			Name:           "Eat at Home",
			Weight:         2,
			CooldownExempt: true,
		},
	}
	if so.selection != nil {
		selOpts = *so.selection
	}
	backupDir := t.TempDir()

	categories := services.NewCategoryService(log, repo, []string{"quick", "sit-down", "nice"})
	restaurants := services.NewRestaurantService(log, repo, categories, models.Nearby)
	history := services.NewHistoryService(log, repo, 30*24*time.Hour)
	limiter := services.NewSpinLimitService(log, repo, 30*time.Second)
	selection := services.NewSelectionService(log, repo, history, limiter, selOpts)
	backup := services.NewBackupService(log, repo, categories, services.BackupOptions{
		Dir:             backupDir,
		Timeout:         5 * time.Second,
		DefaultDistance: models.Nearby,
	})

	identity := auth.New(false)
	h := handlers.New(handlers.Services{
		Restaurants: restaurants,
		Categories:  categories,
		Selection:   selection,
		History:     history,
		SpinLimit:   limiter,
		Backup:      backup,
	}, so.places, identity, nil, repo, handlers.NoopHTTPLogger{}, so.opts)

	return &testServer{router: h.Router(), auth: identity, selection: selection, backupDir: backupDir}
}

// do sends a request, as user when non-empty, and returns the recorder
func (s *testServer) do(t *testing.T, method, path string, body interface{}, user string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		rec := httptest.NewRecorder()
		s.auth.SetUserCookie(rec, user)
		for _, c := range rec.Result().Cookies() {
			req.AddCookie(c)
		}
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// addRestaurant creates a restaurant through the API and returns it
func (s *testServer) addRestaurant(t *testing.T, name string, categories []string, distance string) models.Restaurant {
	t.Helper()
	w := s.do(t, "POST", "/api/restaurants", map[string]interface{}{
		"name":       name,
		"categories": categories,
		"distance":   distance,
	}, "Alex")
	if w.Code != http.StatusCreated {
		t.Fatalf("create %q: expected 201, got %d: %s", name, w.Code, w.Body.String())
	}
	var resp handlers.RestaurantResponse
	decode(t, w, &resp)
	return *resp.Restaurant
}

func decode(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), target); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
}

// errorBody decodes an error envelope
func errorBody(t *testing.T, w *httptest.ResponseRecorder) handlers.APIError {
	t.Helper()
	var e handlers.APIError
	decode(t, w, &e)
	if e.Success {
		t.Errorf("expected success=false in %s", w.Body.String())
	}
	return e
}

func expectStatus(t *testing.T, w *httptest.ResponseRecorder, status int) {
	t.Helper()
	if w.Code != status {
		t.Fatalf("expected status %d, got %d: %s", status, w.Code, w.Body.String())
	}
}
