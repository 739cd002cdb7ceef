package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/ankigen/internal/generation"
)

// MockProvider implements generation.Provider for testing.
type MockProvider struct {
	ProviderName string
	GenerateFn   func(ctx context.Context, req generation.Request) (string, error)

	// Default response values
	Text string
	Err  error

	mu       sync.Mutex
	requests []generation.Request
}

var _ generation.Provider = (*MockProvider)(nil)

// Name implements generation.Provider.
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Generate implements generation.Provider.
func (m *MockProvider) Generate(ctx context.Context, req generation.Request) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, req)
	}
	return m.Text, m.Err
}

// Requests returns a copy of the recorded requests.
func (m *MockProvider) Requests() []generation.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]generation.Request(nil), m.requests...)
}
