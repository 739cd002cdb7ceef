package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/ankigen/internal/domain"
	"github.com/phrazzld/ankigen/internal/generation"
)

// GenerateCardsCall records the arguments of one GenerateCards call.
type GenerateCardsCall struct {
	Input   domain.DocumentInput
	Style   domain.CardStyle
	Options generation.Options
}

// MockGenerator implements generation.Generator for testing.
type MockGenerator struct {
	// GenerateCardsFn overrides the default response when set.
	GenerateCardsFn func(
		ctx context.Context,
		input domain.DocumentInput,
		style domain.CardStyle,
		opts generation.Options,
	) ([]domain.Card, error)

	// Default response values
	Cards []domain.Card
	Err   error

	mu    sync.Mutex
	calls []GenerateCardsCall
}

var _ generation.Generator = (*MockGenerator)(nil)

// GenerateCards implements generation.Generator.
func (m *MockGenerator) GenerateCards(
	ctx context.Context,
	input domain.DocumentInput,
	style domain.CardStyle,
	opts generation.Options,
) ([]domain.Card, error) {
	m.mu.Lock()
	m.calls = append(m.calls, GenerateCardsCall{Input: input, Style: style, Options: opts})
	m.mu.Unlock()

	if m.GenerateCardsFn != nil {
		return m.GenerateCardsFn(ctx, input, style, opts)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Cards, nil
}

// Calls returns a copy of the recorded calls.
func (m *MockGenerator) Calls() []GenerateCardsCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]GenerateCardsCall(nil), m.calls...)
}
