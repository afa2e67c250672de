package places

import (
	"context"
	"strings"
)

// MockClient is a mock places client for testing
type MockClient struct {
	places    []Place
	details   map[string]*PlaceDetails
	searchErr error
	detailErr error
	disabled  bool
	queries   []string
}

// MockOption configures the mock client
type MockOption func(*MockClient)

// WithPlaces sets the places searched over
func WithPlaces(places []Place) MockOption {
	return func(m *MockClient) {
		m.places = places
	}
}

// WithDetails sets the details returned by id
func WithDetails(details ...*PlaceDetails) MockOption {
	return func(m *MockClient) {
		for _, d := range details {
			m.details[d.ID] = d
		}
	}
}

// WithSearchError sets an error to return from Search
func WithSearchError(err error) MockOption {
	return func(m *MockClient) {
		m.searchErr = err
	}
}

// WithDetailsError sets an error to return from Details
func WithDetailsError(err error) MockOption {
	return func(m *MockClient) {
		m.detailErr = err
	}
}

// Disabled makes the mock behave like a client with no API key
func Disabled() MockOption {
	return func(m *MockClient) {
		m.disabled = true
	}
}

// NewMockClient creates a new mock places client
func NewMockClient(opts ...MockOption) *MockClient {
	m := &MockClient{details: make(map[string]*PlaceDetails)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Enabled implements Client
func (m *MockClient) Enabled() bool {
	return !m.disabled
}

// Search returns configured places whose name contains query, case-insensitively
func (m *MockClient) Search(ctx context.Context, query string, max int) ([]Place, error) {
	m.queries = append(m.queries, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if m.disabled {
		return []Place{}, nil
	}
	out := []Place{}
	for _, p := range m.places {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
		if max > 0 && len(out) == max {
			break
		}
	}
	return out, nil
}

// Details returns the configured details or ErrPlaceNotFound
func (m *MockClient) Details(ctx context.Context, id string) (*PlaceDetails, error) {
	if m.detailErr != nil {
		return nil, m.detailErr
	}
	if m.disabled {
		return nil, ErrDisabled
	}
	d, ok := m.details[id]
	if !ok {
		return nil, ErrPlaceNotFound
	}
	return d, nil
}

// Queries returns every query passed to Search
func (m *MockClient) Queries() []string {
	return m.queries
}

var (
	_ Client = (*HTTPClient)(nil)
	_ Client = (*MockClient)(nil)
)
