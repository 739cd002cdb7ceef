package mocks

import (
	"context"

	"github.com/phrazzld/ankigen/internal/document"
	"github.com/phrazzld/ankigen/internal/domain"
)

// MockEncoder implements document.Encoder for testing.
type MockEncoder struct {
	EncodeFn func(ctx context.Context, upload domain.Upload) (domain.DocumentInput, error)

	// Default response values
	Input domain.DocumentInput
	Err   error
}

var _ document.Encoder = (*MockEncoder)(nil)

// Encode implements document.Encoder.
func (m *MockEncoder) Encode(ctx context.Context, upload domain.Upload) (domain.DocumentInput, error) {
	if m.EncodeFn != nil {
		return m.EncodeFn(ctx, upload)
	}
	if m.Err != nil {
		return domain.DocumentInput{}, m.Err
	}
	return m.Input, nil
}
