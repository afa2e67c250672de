package testutil

import (
	"testing"
	"time"

	"github.com/abrezinsky/dinnerroulette/internal/repository"
	"github.com/abrezinsky/dinnerroulette/internal/store"
)

// NewTestStore creates a fresh in-memory SQLite store.
func NewTestStore(t *testing.T) *store.SQLite {
	t.Helper()

	s, err := store.NewSQLite(":memory:", 2*time.Second)
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return s
}

// NewTestRepository creates a new repository over a fresh in-memory store.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()
	return repository.New(NewTestStore(t))
}
